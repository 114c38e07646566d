package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/core/pricing"
	"github.com/tiyeni/storefront/internal/port"
)

var (
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
)

type CheckoutInput struct {
	RequestID string
	SessionID string
	UserID    string
	Email     string
	PromoCode string
	ReturnURL string
}

type CheckoutResult struct {
	OrderID     string
	TxRef       string
	CheckoutURL string
	Quote       pricing.Quote
}

// CheckoutService turns a session cart into a pending order and a gateway
// charge. Orders are persisted asynchronously by workers draining the queue.
type CheckoutService struct {
	items      port.ItemRepository
	promos     port.PromotionRepository
	carts      port.CartStore
	cache      port.CacheRepository
	gateway    port.PaymentGateway
	payments   port.PaymentRepository
	taxBps     int64
	feeBps     int64
	currency   string
	now        func() time.Time
	orderQueue chan domain.Order
}

func NewCheckoutService(
	items port.ItemRepository,
	promos port.PromotionRepository,
	carts port.CartStore,
	cache port.CacheRepository,
	gateway port.PaymentGateway,
	payments port.PaymentRepository,
	taxBps, feeBps int64,
	currency string,
	queueSize int,
) *CheckoutService {
	return &CheckoutService{
		items:      items,
		promos:     promos,
		carts:      carts,
		cache:      cache,
		gateway:    gateway,
		payments:   payments,
		taxBps:     taxBps,
		feeBps:     feeBps,
		currency:   currency,
		now:        time.Now,
		orderQueue: make(chan domain.Order, queueSize),
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	idempotencyKey := fmt.Sprintf("checkout:%s", in.RequestID)

	ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	cart, err := s.carts.GetCart(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}

	lines, err := s.resolveLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	promo, err := s.lookupPromo(ctx, in.PromoCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	quote, err := pricing.Compute(lines, promo, now, s.taxBps, s.feeBps)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reserveStock(ctx, lines)
	if err != nil {
		return nil, err
	}

	// Usage is claimed only once stock is held, and given back whenever
	// the checkout fails past this point.
	if promo != nil {
		if err := s.promos.IncrementUsage(ctx, promo.ID); err != nil {
			s.releaseStock(ctx, reserved)
			return nil, fmt.Errorf("record promotion usage: %w", err)
		}
	}

	orderID := uuid.NewString()
	txRef := "order-" + orderID

	order := domain.Order{
		ID:         orderID,
		UserID:     in.UserID,
		Lines:      lines,
		PromoCode:  in.PromoCode,
		Subtotal:   quote.Subtotal,
		Discount:   quote.Discount,
		GatewayFee: quote.GatewayFee,
		Tax:        quote.Tax,
		Total:      quote.Total,
		Currency:   s.currency,
		Status:     domain.OrderStatusPending,
		PaymentRef: txRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	charge, err := s.gateway.InitiateCharge(ctx, port.ChargeRequest{
		TxRef:     txRef,
		Amount:    quote.Total,
		Currency:  s.currency,
		Email:     in.Email,
		ReturnURL: in.ReturnURL,
	})
	if err != nil {
		s.rollback(ctx, reserved, promo)
		return nil, fmt.Errorf("initiate charge: %w", err)
	}

	payment := domain.Payment{
		ID:         uuid.NewString(),
		TxRef:      txRef,
		SourceKind: domain.LedgerSourceOrder,
		SourceID:   orderID,
		Amount:     quote.Total,
		Currency:   s.currency,
		Status:     domain.PaymentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		s.rollback(ctx, reserved, promo)
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.orderQueue <- order

	if err := s.carts.ClearCart(ctx, in.SessionID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	return &CheckoutResult{
		OrderID:     orderID,
		TxRef:       txRef,
		CheckoutURL: charge.CheckoutURL,
		Quote:       quote,
	}, nil
}

func (s *CheckoutService) resolveLines(ctx context.Context, cart domain.Cart) ([]domain.OrderLine, error) {
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, cl := range cart.Lines {
		item, err := s.items.GetItem(ctx, cl.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve item %s: %w", cl.ItemID, err)
		}
		if item == nil || !item.Active {
			return nil, domain.Invalid("cart", fmt.Sprintf("item %s is unavailable", cl.ItemID))
		}
		if item.Kind != domain.ItemKindProduct {
			return nil, domain.Invalid("cart", fmt.Sprintf("item %s must be booked, not purchased", cl.ItemID))
		}
		lines = append(lines, domain.OrderLine{
			ItemID:    item.ID,
			ItemName:  item.Name,
			UnitPrice: item.Price,
			Quantity:  cl.Quantity,
		})
	}
	return lines, nil
}

func (s *CheckoutService) lookupPromo(ctx context.Context, code string) (*domain.Promotion, error) {
	code = domain.NormalizePromoCode(code)
	if code == "" {
		return nil, nil
	}
	promo, err := s.promos.GetPromotionByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup promotion: %w", err)
	}
	if promo == nil {
		return nil, domain.Invalid("promo_code", "unknown code")
	}
	return promo, nil
}

// reserveStock decrements cached stock line by line, undoing prior
// decrements when one runs short.
func (s *CheckoutService) reserveStock(ctx context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	var reserved []domain.OrderLine
	for _, l := range lines {
		ok, err := s.cache.DecrementStock(ctx, l.ItemID, l.Quantity)
		if err != nil {
			s.releaseStock(ctx, reserved)
			return nil, fmt.Errorf("stock decrement failed: %w", err)
		}
		if !ok {
			s.releaseStock(ctx, reserved)
			return nil, ErrInsufficientStock
		}
		reserved = append(reserved, l)
	}
	return reserved, nil
}

func (s *CheckoutService) releaseStock(ctx context.Context, lines []domain.OrderLine) {
	for _, l := range lines {
		// Rollback failures leave cached stock low until the next sync.
		_ = s.cache.IncrementStock(ctx, l.ItemID, l.Quantity)
	}
}

func (s *CheckoutService) rollback(ctx context.Context, reserved []domain.OrderLine, promo *domain.Promotion) {
	s.releaseStock(ctx, reserved)
	if promo != nil {
		_ = s.promos.DecrementUsage(ctx, promo.ID)
	}
}

func (s *CheckoutService) OrderQueue() <-chan domain.Order {
	return s.orderQueue
}

func (s *CheckoutService) Close() {
	close(s.orderQueue)
}
