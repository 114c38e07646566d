package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

// PromotionService manages discount codes (admin) and validates them for
// the storefront.
type PromotionService struct {
	promos port.PromotionRepository
	now    func() time.Time
}

func NewPromotionService(promos port.PromotionRepository) *PromotionService {
	return &PromotionService{promos: promos, now: time.Now}
}

func (s *PromotionService) Create(ctx context.Context, promo domain.Promotion) (*domain.Promotion, error) {
	promo.Code = domain.NormalizePromoCode(promo.Code)
	if err := promo.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.promos.GetPromotionByCode(ctx, promo.Code)
	if err != nil {
		return nil, fmt.Errorf("check code: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	promo.ID = uuid.NewString()
	promo.UsageCount = 0
	promo.CreatedAt = s.now()
	promo.UpdatedAt = promo.CreatedAt
	if err := s.promos.CreatePromotion(ctx, promo); err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return &promo, nil
}

func (s *PromotionService) Get(ctx context.Context, id string) (*domain.Promotion, error) {
	promo, err := s.promos.GetPromotion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if promo == nil {
		return nil, domain.ErrNotFound
	}
	return promo, nil
}

func (s *PromotionService) List(ctx context.Context) ([]domain.Promotion, error) {
	return s.promos.ListPromotions(ctx)
}

func (s *PromotionService) Update(ctx context.Context, promo domain.Promotion) (*domain.Promotion, error) {
	promo.Code = domain.NormalizePromoCode(promo.Code)
	if err := promo.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, promo.ID)
	if err != nil {
		return nil, err
	}
	promo.UsageCount = existing.UsageCount
	promo.CreatedAt = existing.CreatedAt
	promo.UpdatedAt = s.now()
	if err := s.promos.UpdatePromotion(ctx, promo); err != nil {
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	return &promo, nil
}

// Check resolves a code to a promotion currently usable by the storefront.
func (s *PromotionService) Check(ctx context.Context, code string) (*domain.Promotion, error) {
	code = domain.NormalizePromoCode(code)
	promo, err := s.promos.GetPromotionByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup promotion: %w", err)
	}
	if promo == nil || !promo.Usable(s.now()) {
		return nil, domain.ErrNotFound
	}
	return promo, nil
}
