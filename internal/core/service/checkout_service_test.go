package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiyeni/storefront/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newCheckoutFixture(t *testing.T, items ...domain.Item) (*CheckoutService, *mockItemRepo, *mockPromotionRepo, *mockCartStore, *mockCacheRepo, *mockGateway, *mockPaymentRepo) {
	t.Helper()
	itemRepo := newMockItemRepo(items...)
	promoRepo := newMockPromotionRepo()
	carts := newMockCartStore()
	cache := newMockCacheRepo()
	gateway := newMockGateway()
	payments := newMockPaymentRepo()

	svc := NewCheckoutService(itemRepo, promoRepo, carts, cache, gateway, payments, 1650, 300, "MWK", 100)
	svc.now = fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	return svc, itemRepo, promoRepo, carts, cache, gateway, payments
}

func TestCheckout_Success(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, _, carts, cache, gateway, payments := newCheckoutFixture(t, item)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 2))

	result, err := svc.Checkout(ctx, CheckoutInput{
		RequestID: "req-1",
		SessionID: "sess-1",
		UserID:    "user-1",
		Email:     "customer@example.com",
	})
	require.NoError(t, err)

	// 13000 subtotal, 16.5% tax, 3% fee on taxable amount.
	assert.Equal(t, int64(13000), result.Quote.Subtotal)
	assert.Equal(t, int64(2145), result.Quote.Tax)
	assert.Equal(t, int64(454), result.Quote.GatewayFee)
	assert.Equal(t, int64(15599), result.Quote.Total)
	assert.Equal(t, "https://checkout.example/"+result.TxRef, result.CheckoutURL)

	assert.Equal(t, 8, cache.stockOf("fabric"))

	cart, err := carts.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.Empty(), "cart should be cleared after checkout")

	payment, err := payments.GetPaymentByTxRef(ctx, result.TxRef)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, int64(15599), payment.Amount)

	require.Len(t, gateway.initiated, 1)
	assert.Equal(t, int64(15599), gateway.initiated[0].Amount)
	assert.Equal(t, "MWK", gateway.initiated[0].Currency)

	select {
	case order := <-svc.OrderQueue():
		assert.Equal(t, result.OrderID, order.ID)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.Equal(t, result.TxRef, order.PaymentRef)
		require.Len(t, order.Lines, 1)
		assert.Equal(t, 2, order.Lines[0].Quantity)
	default:
		t.Fatal("expected order enqueued for persistence")
	}
}

func TestCheckout_DuplicateRequest(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, _, carts, cache, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 1))

	in := CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1"}
	_, err := svc.Checkout(ctx, in)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, _, _, _, _, _ := newCheckoutFixture(t)

	_, err := svc.Checkout(context.Background(), CheckoutInput{RequestID: "req-1", SessionID: "sess-empty", UserID: "user-1"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	fabric := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	coffee := domain.Item{ID: "coffee", Kind: domain.ItemKindProduct, Name: "Mzuzu Coffee", Price: 4000, Active: true}
	svc, _, _, carts, cache, _, _ := newCheckoutFixture(t, fabric, coffee)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, "fabric", 5))
	require.NoError(t, cache.SetStock(ctx, "coffee", 1))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 2))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "coffee", 3))

	_, err := svc.Checkout(ctx, CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1"})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The fabric decrement must be undone when coffee runs short.
	assert.Equal(t, 5, cache.stockOf("fabric"))
	assert.Equal(t, 1, cache.stockOf("coffee"))
}

func TestCheckout_GatewayFailureReleasesStock(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, _, carts, cache, gateway, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	gateway.initiateErr = errors.New("gateway down")
	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 2))

	_, err := svc.Checkout(ctx, CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1"})
	require.Error(t, err)
	assert.Equal(t, 10, cache.stockOf("fabric"))
}

func TestCheckout_InactiveItemRejected(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: false}
	svc, _, _, carts, cache, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 1))

	_, err := svc.Checkout(ctx, CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1"})
	assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
}

func TestCheckout_ServiceItemRejected(t *testing.T) {
	item := domain.Item{ID: "fitting", Kind: domain.ItemKindService, Name: "Tailoring Fitting", Price: 9000, Active: true, DurationMin: 60}
	svc, _, _, carts, _, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, "sess-1", "fitting", 1))

	_, err := svc.Checkout(ctx, CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1"})
	assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
}

func TestCheckout_PromotionAppliedAndCounted(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, promoRepo, carts, cache, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	promo := domain.Promotion{
		ID:     "promo-1",
		Code:   "KARIBU10",
		Kind:   domain.PromotionKindPercent,
		Value:  1000,
		Active: true,
	}
	require.NoError(t, promoRepo.CreatePromotion(ctx, promo))
	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 2))

	result, err := svc.Checkout(ctx, CheckoutInput{
		RequestID: "req-1",
		SessionID: "sess-1",
		UserID:    "user-1",
		PromoCode: "KARIBU10",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1300), result.Quote.Discount)

	stored, err := promoRepo.GetPromotion(ctx, "promo-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
}

func TestCheckout_SoldOutLeavesPromoUnused(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, promoRepo, carts, cache, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	require.NoError(t, promoRepo.CreatePromotion(ctx, domain.Promotion{
		ID:         "promo-1",
		Code:       "KARIBU10",
		Kind:       domain.PromotionKindPercent,
		Value:      1000,
		UsageLimit: 1,
		Active:     true,
	}))
	require.NoError(t, cache.SetStock(ctx, "fabric", 0))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 1))

	_, err := svc.Checkout(ctx, CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1", PromoCode: "KARIBU10"})
	require.ErrorIs(t, err, ErrInsufficientStock)

	stored, err := promoRepo.GetPromotion(ctx, "promo-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsageCount, "failed checkout must not consume a usage slot")
}

func TestCheckout_GatewayFailureReleasesPromoUsage(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, promoRepo, carts, cache, gateway, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	gateway.initiateErr = errors.New("gateway down")
	require.NoError(t, promoRepo.CreatePromotion(ctx, domain.Promotion{
		ID:         "promo-1",
		Code:       "KARIBU10",
		Kind:       domain.PromotionKindPercent,
		Value:      1000,
		UsageLimit: 1,
		Active:     true,
	}))
	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 1))

	_, err := svc.Checkout(ctx, CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1", PromoCode: "KARIBU10"})
	require.Error(t, err)

	assert.Equal(t, 10, cache.stockOf("fabric"))
	stored, err := promoRepo.GetPromotion(ctx, "promo-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsageCount)
}

func TestCheckout_PromoCodeNormalized(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, promoRepo, carts, cache, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	require.NoError(t, promoRepo.CreatePromotion(ctx, domain.Promotion{
		ID:     "promo-1",
		Code:   "KARIBU10",
		Kind:   domain.PromotionKindPercent,
		Value:  1000,
		Active: true,
	}))
	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 2))

	result, err := svc.Checkout(ctx, CheckoutInput{
		RequestID: "req-1",
		SessionID: "sess-1",
		UserID:    "user-1",
		PromoCode: " karibu10 ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1300), result.Quote.Discount)
}

func TestCheckout_UnknownPromoCode(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, _, carts, cache, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	require.NoError(t, cache.SetStock(ctx, "fabric", 10))
	require.NoError(t, carts.AddLine(ctx, "sess-1", "fabric", 1))

	_, err := svc.Checkout(ctx, CheckoutInput{RequestID: "req-1", SessionID: "sess-1", UserID: "user-1", PromoCode: "NOPE"})
	assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
}

func TestCheckout_ConcurrentRequestsNeverOversell(t *testing.T) {
	item := domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true}
	svc, _, _, carts, cache, _, _ := newCheckoutFixture(t, item)
	ctx := context.Background()

	const stock = 5
	const attempts = 20
	require.NoError(t, cache.SetStock(ctx, "fabric", stock))
	for i := 0; i < attempts; i++ {
		sessionID := "sess-" + string(rune('a'+i))
		require.NoError(t, carts.AddLine(ctx, sessionID, "fabric", 1))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, outOfStock int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessionID := "sess-" + string(rune('a'+i))
			_, err := svc.Checkout(ctx, CheckoutInput{
				RequestID: "req-" + sessionID,
				SessionID: sessionID,
				UserID:    "user-" + sessionID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientStock):
				outOfStock++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, attempts-stock, outOfStock)
	assert.Equal(t, 0, cache.stockOf("fabric"))
}
