package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

var (
	ErrCaptchaFailed = errors.New("captcha verification failed")
	ErrNotEligible   = errors.New("not eligible to review this item")
)

type ReviewInput struct {
	UserID       string
	ItemID       string
	Rating       int
	Comment      string
	CaptchaToken string
	RemoteIP     string
}

// ReviewService accepts captcha-gated reviews from verified purchasers
// and supports admin moderation.
type ReviewService struct {
	reviews  port.ReviewRepository
	items    port.ItemRepository
	orders   port.OrderRepository
	bookings port.BookingRepository
	captcha  port.CaptchaVerifier
	now      func() time.Time
}

func NewReviewService(
	reviews port.ReviewRepository,
	items port.ItemRepository,
	orders port.OrderRepository,
	bookings port.BookingRepository,
	captcha port.CaptchaVerifier,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		items:    items,
		orders:   orders,
		bookings: bookings,
		captcha:  captcha,
		now:      time.Now,
	}
}

func (s *ReviewService) Submit(ctx context.Context, in ReviewInput) (*domain.Review, error) {
	ok, err := s.captcha.Verify(ctx, in.CaptchaToken, in.RemoteIP)
	if err != nil {
		return nil, fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return nil, ErrCaptchaFailed
	}

	item, err := s.items.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("resolve item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	review := domain.Review{
		ID:        uuid.NewString(),
		ItemID:    in.ItemID,
		UserID:    in.UserID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Status:    domain.ReviewStatusPending,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.reviews.GetReviewByUserItem(ctx, in.UserID, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	eligible, err := s.eligible(ctx, in.UserID, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNotEligible
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}

// eligible requires a delivered order containing the item or a completed
// booking of it.
func (s *ReviewService) eligible(ctx context.Context, userID, itemID string) (bool, error) {
	orders, err := s.orders.ListOrders(ctx, port.OrderFilter{
		UserID: userID,
		Status: domain.OrderStatusDelivered,
	})
	if err != nil {
		return false, fmt.Errorf("list orders: %w", err)
	}
	for _, o := range orders {
		if o.ContainsItem(itemID) {
			return true, nil
		}
	}

	bookings, err := s.bookings.ListBookings(ctx, port.BookingFilter{
		UserID: userID,
		ItemID: itemID,
		Status: domain.BookingStatusCompleted,
	})
	if err != nil {
		return false, fmt.Errorf("list bookings: %w", err)
	}
	return len(bookings) > 0, nil
}

func (s *ReviewService) ListApproved(ctx context.Context, itemID string) ([]domain.Review, error) {
	return s.reviews.ListReviews(ctx, itemID, domain.ReviewStatusApproved)
}

func (s *ReviewService) ListPending(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.ListReviews(ctx, "", domain.ReviewStatusPending)
}

// Moderate approves or rejects a pending review.
func (s *ReviewService) Moderate(ctx context.Context, id string, approve bool) (*domain.Review, error) {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, domain.ErrNotFound
	}
	if review.Status != domain.ReviewStatusPending {
		return nil, fmt.Errorf("%w: %s is already moderated", ErrInvalidTransition, id)
	}

	status := domain.ReviewStatusRejected
	if approve {
		status = domain.ReviewStatusApproved
	}
	if err := s.reviews.UpdateReviewStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update review status: %w", err)
	}
	review.Status = status
	return review, nil
}
