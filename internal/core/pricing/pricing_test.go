package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiyeni/storefront/internal/core/domain"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func lines(pairs ...int64) []domain.OrderLine {
	var ls []domain.OrderLine
	for i := 0; i < len(pairs); i += 2 {
		ls = append(ls, domain.OrderLine{
			ItemID:    "item-" + string(rune('a'+i/2)),
			UnitPrice: pairs[i],
			Quantity:  int(pairs[i+1]),
		})
	}
	return ls
}

func activePromo(kind domain.PromotionKind, value int64) *domain.Promotion {
	return &domain.Promotion{
		Code:     "SAVE",
		Kind:     kind,
		Value:    value,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
		Active:   true,
	}
}

func TestCompute_NoPromo(t *testing.T) {
	// 2 x 5000 + 1 x 3000 = 13000; 16.5% tax; 3% fee on 15145.
	q, err := Compute(lines(5000, 2, 3000, 1), nil, now, 1650, 300)
	require.NoError(t, err)

	assert.Equal(t, int64(13000), q.Subtotal)
	assert.Equal(t, int64(0), q.Discount)
	assert.Equal(t, int64(2145), q.Tax)
	assert.Equal(t, int64(454), q.GatewayFee)
	assert.Equal(t, int64(15599), q.Total)
}

func TestCompute_PercentPromo(t *testing.T) {
	q, err := Compute(lines(10000, 1), activePromo(domain.PromotionKindPercent, 1000), now, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), q.Discount)
	assert.Equal(t, int64(9000), q.Total)
}

func TestCompute_FixedPromoClampedToSubtotal(t *testing.T) {
	q, err := Compute(lines(2000, 1), activePromo(domain.PromotionKindFixed, 5000), now, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(2000), q.Discount)
	assert.Equal(t, int64(0), q.Total)
}

func TestCompute_RoundsHalfUp(t *testing.T) {
	// 15% of 30 = 4.5 -> rounds to 5.
	q, err := Compute(lines(30, 1), activePromo(domain.PromotionKindPercent, 1500), now, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(5), q.Discount)
}

func TestDiscount_ScopedToItems(t *testing.T) {
	promo := activePromo(domain.PromotionKindPercent, 5000)
	promo.ItemIDs = []string{"item-a"}

	// Only item-a's 4000 is eligible for the 50% discount.
	d, err := Discount(promo, lines(4000, 1, 6000, 1), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), d)
}

func TestDiscount_NotApplicable(t *testing.T) {
	promo := activePromo(domain.PromotionKindPercent, 5000)
	promo.ItemIDs = []string{"other-item"}

	_, err := Discount(promo, lines(4000, 1), now)
	assert.ErrorIs(t, err, ErrPromotionNotApplicable)
}

func TestDiscount_OutsideWindow(t *testing.T) {
	promo := activePromo(domain.PromotionKindPercent, 1000)
	promo.EndsAt = now.Add(-time.Minute)

	_, err := Discount(promo, lines(4000, 1), now)
	assert.ErrorIs(t, err, ErrPromotionNotUsable)
}

func TestDiscount_UsageLimitExhausted(t *testing.T) {
	promo := activePromo(domain.PromotionKindPercent, 1000)
	promo.UsageLimit = 3
	promo.UsageCount = 3

	_, err := Discount(promo, lines(4000, 1), now)
	assert.ErrorIs(t, err, ErrPromotionNotUsable)
}

func TestDiscount_Inactive(t *testing.T) {
	promo := activePromo(domain.PromotionKindFixed, 100)
	promo.Active = false

	_, err := Discount(promo, lines(4000, 1), now)
	assert.ErrorIs(t, err, ErrPromotionNotUsable)
}
