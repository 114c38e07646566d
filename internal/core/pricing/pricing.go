// Package pricing computes checkout totals in minor currency units.
package pricing

import (
	"errors"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
)

var (
	ErrPromotionNotUsable     = errors.New("promotion not usable")
	ErrPromotionNotApplicable = errors.New("promotion does not apply to any item")
)

// Quote is the full amount breakdown for an order or booking:
// Total = Subtotal - Discount + Tax + GatewayFee.
type Quote struct {
	Subtotal   int64
	Discount   int64
	Tax        int64
	GatewayFee int64
	Total      int64
}

// roundHalfUp computes amount*bps/10000 rounding half away from zero.
// Amounts are never negative here.
func roundHalfUp(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}

// Discount computes the promotion discount against the eligible portion of
// the given lines. The discount never exceeds the eligible subtotal.
func Discount(promo *domain.Promotion, lines []domain.OrderLine, at time.Time) (int64, error) {
	if promo == nil {
		return 0, nil
	}
	if !promo.Usable(at) {
		return 0, ErrPromotionNotUsable
	}

	var eligible int64
	for _, l := range lines {
		if promo.AppliesTo(l.ItemID) {
			eligible += l.Subtotal()
		}
	}
	if eligible == 0 {
		return 0, ErrPromotionNotApplicable
	}

	var discount int64
	switch promo.Kind {
	case domain.PromotionKindPercent:
		discount = roundHalfUp(eligible, promo.Value)
	case domain.PromotionKindFixed:
		discount = promo.Value
	}
	if discount > eligible {
		discount = eligible
	}
	return discount, nil
}

// Compute prices a set of lines. Tax (bps) applies to the discounted
// subtotal; the gateway fee (bps) applies to the amount actually charged,
// i.e. discounted subtotal plus tax.
func Compute(lines []domain.OrderLine, promo *domain.Promotion, at time.Time, taxBps, feeBps int64) (Quote, error) {
	var q Quote
	for _, l := range lines {
		q.Subtotal += l.Subtotal()
	}

	discount, err := Discount(promo, lines, at)
	if err != nil {
		return Quote{}, err
	}
	q.Discount = discount

	taxable := q.Subtotal - q.Discount
	q.Tax = roundHalfUp(taxable, taxBps)
	q.GatewayFee = roundHalfUp(taxable+q.Tax, feeBps)
	q.Total = taxable + q.Tax + q.GatewayFee
	return q, nil
}
