package domain

import (
	"strings"
	"time"
)

type PromotionKind string

const (
	PromotionKindPercent PromotionKind = "percent"
	PromotionKindFixed   PromotionKind = "fixed"
)

// Promotion discounts checkout totals. Percent promotions store basis
// points (1000 = 10%); fixed promotions store minor currency units.
type Promotion struct {
	ID         string
	Code       string
	Kind       PromotionKind
	Value      int64
	ItemIDs    []string // empty means storewide
	StartsAt   time.Time
	EndsAt     time.Time
	UsageLimit int // 0 means unlimited
	UsageCount int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizePromoCode is the canonical form for promo codes; every
// store and lookup goes through it.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p Promotion) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return Invalid("code", "must not be empty")
	}
	if p.Kind != PromotionKindPercent && p.Kind != PromotionKindFixed {
		return Invalid("kind", "must be percent or fixed")
	}
	if p.Value <= 0 {
		return Invalid("value", "must be positive")
	}
	if p.Kind == PromotionKindPercent && p.Value > 10000 {
		return Invalid("value", "percent promotion exceeds 100%")
	}
	if !p.EndsAt.IsZero() && !p.EndsAt.After(p.StartsAt) {
		return Invalid("ends_at", "must be after starts_at")
	}
	return nil
}

// Usable reports whether the promotion can be applied at the given time.
func (p Promotion) Usable(at time.Time) bool {
	if !p.Active {
		return false
	}
	if at.Before(p.StartsAt) {
		return false
	}
	if !p.EndsAt.IsZero() && at.After(p.EndsAt) {
		return false
	}
	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return false
	}
	return true
}

// AppliesTo reports whether the promotion covers the item.
func (p Promotion) AppliesTo(itemID string) bool {
	if len(p.ItemIDs) == 0 {
		return true
	}
	for _, id := range p.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
