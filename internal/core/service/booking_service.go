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

var ErrSlotUnavailable = errors.New("slot unavailable")

type BookingInput struct {
	UserID    string
	Email     string
	ItemID    string
	StartsAt  time.Time
	Guests    int
	Notes     string
	PromoCode string
	ReturnURL string
}

type BookingResult struct {
	Booking     domain.Booking
	CheckoutURL string
}

// BookingService reserves service items and drives bookings through the
// status table.
type BookingService struct {
	bookings port.BookingRepository
	items    port.ItemRepository
	promos   port.PromotionRepository
	gateway  port.PaymentGateway
	payments port.PaymentRepository
	events   port.EventPublisher
	taxBps   int64
	feeBps   int64
	currency string
	now      func() time.Time
}

func NewBookingService(
	bookings port.BookingRepository,
	items port.ItemRepository,
	promos port.PromotionRepository,
	gateway port.PaymentGateway,
	payments port.PaymentRepository,
	events port.EventPublisher,
	taxBps, feeBps int64,
	currency string,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		promos:   promos,
		gateway:  gateway,
		payments: payments,
		events:   events,
		taxBps:   taxBps,
		feeBps:   feeBps,
		currency: currency,
		now:      time.Now,
	}
}

func (s *BookingService) Book(ctx context.Context, in BookingInput) (*BookingResult, error) {
	item, err := s.items.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("resolve item: %w", err)
	}
	if item == nil || !item.Active {
		return nil, domain.ErrNotFound
	}
	if item.Kind != domain.ItemKindService {
		return nil, domain.Invalid("item_id", "item is not bookable")
	}

	now := s.now()
	if in.StartsAt.Before(now) {
		return nil, domain.Invalid("starts_at", "must be in the future")
	}
	if in.Guests <= 0 {
		in.Guests = 1
	}
	endsAt := in.StartsAt.Add(time.Duration(item.DurationMin) * time.Minute)

	overlapping, err := s.bookings.ListOverlapping(ctx, item.ID, in.StartsAt, endsAt)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	capacity := item.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	if len(overlapping) >= capacity {
		return nil, ErrSlotUnavailable
	}

	lines := []domain.OrderLine{{
		ItemID:    item.ID,
		ItemName:  item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
	}}

	var promo *domain.Promotion
	if code := domain.NormalizePromoCode(in.PromoCode); code != "" {
		promo, err = s.promos.GetPromotionByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("lookup promotion: %w", err)
		}
		if promo == nil {
			return nil, domain.Invalid("promo_code", "unknown code")
		}
	}

	quote, err := pricing.Compute(lines, promo, now, s.taxBps, s.feeBps)
	if err != nil {
		return nil, err
	}
	// Usage claimed here is given back whenever the booking fails before
	// the charge is recorded.
	if promo != nil {
		if err := s.promos.IncrementUsage(ctx, promo.ID); err != nil {
			return nil, fmt.Errorf("record promotion usage: %w", err)
		}
	}

	bookingID := uuid.NewString()
	txRef := "booking-" + bookingID

	booking := domain.Booking{
		ID:         bookingID,
		UserID:     in.UserID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		StartsAt:   in.StartsAt,
		EndsAt:     endsAt,
		Guests:     in.Guests,
		Notes:      in.Notes,
		PromoCode:  in.PromoCode,
		Subtotal:   quote.Subtotal,
		Discount:   quote.Discount,
		GatewayFee: quote.GatewayFee,
		Tax:        quote.Tax,
		Total:      quote.Total,
		Currency:   s.currency,
		Status:     domain.BookingStatusPending,
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
		s.releaseUsage(ctx, promo)
		return nil, fmt.Errorf("initiate charge: %w", err)
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		s.releaseUsage(ctx, promo)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	payment := domain.Payment{
		ID:         uuid.NewString(),
		TxRef:      txRef,
		SourceKind: domain.LedgerSourceBooking,
		SourceID:   bookingID,
		Amount:     quote.Total,
		Currency:   s.currency,
		Status:     domain.PaymentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		s.releaseUsage(ctx, promo)
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.publish(ctx, &booking, "booking.created")

	return &BookingResult{Booking: booking, CheckoutURL: charge.CheckoutURL}, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, filter port.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.ListBookings(ctx, filter)
}

func (s *BookingService) Transition(ctx context.Context, id string, to domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, to)
	}
	if err := s.bookings.UpdateBookingStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	booking.Status = to
	s.publish(ctx, booking, "booking."+string(to))
	return booking, nil
}

// Cancel is the customer-facing cancellation for pending or confirmed bookings.
func (s *BookingService) Cancel(ctx context.Context, id, userID string) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return s.Transition(ctx, id, domain.BookingStatusCancelled)
}

func (s *BookingService) releaseUsage(ctx context.Context, promo *domain.Promotion) {
	if promo != nil {
		_ = s.promos.DecrementUsage(ctx, promo.ID)
	}
}

func (s *BookingService) publish(ctx context.Context, booking *domain.Booking, kind string) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, port.Event{
		Kind:       kind,
		SourceKind: string(domain.LedgerSourceBooking),
		SourceID:   booking.ID,
		UserID:     booking.UserID,
		Amount:     booking.Total,
		Currency:   booking.Currency,
		Status:     string(booking.Status),
	})
}
