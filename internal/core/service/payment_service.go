package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

var (
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrAmountMismatch      = errors.New("paid amount does not match")
)

// ConfirmResult describes the transaction a verified payment settled.
type ConfirmResult struct {
	SourceKind domain.LedgerSource
	SourceID   string
	Amount     int64
}

// PaymentService verifies gateway transactions and settles the order or
// booking they belong to: status transition, ledger posting, event.
type PaymentService struct {
	gateway  port.PaymentGateway
	payments port.PaymentRepository
	orders   port.OrderRepository
	bookings port.BookingRepository
	ledger   *LedgerService
	events   port.EventPublisher
	now      func() time.Time
}

func NewPaymentService(
	gateway port.PaymentGateway,
	payments port.PaymentRepository,
	orders port.OrderRepository,
	bookings port.BookingRepository,
	ledger *LedgerService,
	events port.EventPublisher,
) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		payments: payments,
		orders:   orders,
		bookings: bookings,
		ledger:   ledger,
		events:   events,
		now:      time.Now,
	}
}

// Confirm verifies the gateway transaction by reference and, on success,
// marks the source paid/confirmed and posts its ledger entries. Calling it
// again for a settled transaction is a no-op.
func (s *PaymentService) Confirm(ctx context.Context, txRef string) (*ConfirmResult, error) {
	payment, err := s.payments.GetPaymentByTxRef(ctx, txRef)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	if payment.Status == domain.PaymentStatusSuccess {
		return &ConfirmResult{SourceKind: payment.SourceKind, SourceID: payment.SourceID, Amount: payment.Amount}, nil
	}

	charge, err := s.gateway.VerifyCharge(ctx, txRef)
	if err != nil {
		return nil, fmt.Errorf("verify charge: %w", err)
	}
	if !charge.Paid {
		_ = s.payments.UpdatePaymentStatus(ctx, txRef, domain.PaymentStatusFailed)
		return nil, ErrPaymentNotCompleted
	}
	if charge.Amount != payment.Amount {
		return nil, fmt.Errorf("%w: expected %d, gateway reports %d", ErrAmountMismatch, payment.Amount, charge.Amount)
	}

	switch payment.SourceKind {
	case domain.LedgerSourceOrder:
		err = s.settleOrder(ctx, payment.SourceID)
	case domain.LedgerSourceBooking:
		err = s.settleBooking(ctx, payment.SourceID)
	default:
		err = fmt.Errorf("unknown payment source %q", payment.SourceKind)
	}
	if err != nil {
		return nil, err
	}

	if err := s.payments.UpdatePaymentStatus(ctx, txRef, domain.PaymentStatusSuccess); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	return &ConfirmResult{SourceKind: payment.SourceKind, SourceID: payment.SourceID, Amount: payment.Amount}, nil
}

func (s *PaymentService) settleOrder(ctx context.Context, orderID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}
	if err := s.orders.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	order.Status = domain.OrderStatusPaid

	if err := s.ledger.PostOrder(ctx, *order); err != nil {
		return fmt.Errorf("post ledger: %w", err)
	}
	s.publish(ctx, domain.LedgerSourceOrder, order.ID, order.UserID, order.Total, order.Currency, "order.paid")
	return nil
}

func (s *PaymentService) settleBooking(ctx context.Context, bookingID string) error {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return domain.ErrNotFound
	}
	if booking.Status != domain.BookingStatusPending {
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}
	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, domain.BookingStatusConfirmed); err != nil {
		return fmt.Errorf("confirm booking: %w", err)
	}
	booking.Status = domain.BookingStatusConfirmed

	if err := s.ledger.PostBooking(ctx, *booking); err != nil {
		return fmt.Errorf("post ledger: %w", err)
	}
	s.publish(ctx, domain.LedgerSourceBooking, booking.ID, booking.UserID, booking.Total, booking.Currency, "booking.confirmed")
	return nil
}

func (s *PaymentService) publish(ctx context.Context, kind domain.LedgerSource, id, userID string, amount int64, currency, event string) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, port.Event{
		Kind:       event,
		SourceKind: string(kind),
		SourceID:   id,
		UserID:     userID,
		Amount:     amount,
		Currency:   currency,
	})
}
