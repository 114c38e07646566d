package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

// LedgerService derives double-entry postings from paid transactions and
// reconciles the stored ledger against them.
type LedgerService struct {
	ledger   port.LedgerRepository
	orders   port.OrderRepository
	bookings port.BookingRepository
	now      func() time.Time
}

func NewLedgerService(ledger port.LedgerRepository, orders port.OrderRepository, bookings port.BookingRepository) *LedgerService {
	return &LedgerService{ledger: ledger, orders: orders, bookings: bookings, now: time.Now}
}

// PostOrder writes the balanced posting for a paid order:
// cash is debited the full total; revenue, tax payable and the gateway's
// cut are credited. Posting twice for the same order is rejected.
func (s *LedgerService) PostOrder(ctx context.Context, order domain.Order) error {
	return s.post(ctx, domain.LedgerSourceOrder, order.ID, order.Currency, order.Total,
		order.Subtotal-order.Discount, order.Tax, order.GatewayFee, domain.AccountSalesRevenue)
}

// PostBooking writes the balanced posting for a confirmed booking.
func (s *LedgerService) PostBooking(ctx context.Context, booking domain.Booking) error {
	return s.post(ctx, domain.LedgerSourceBooking, booking.ID, booking.Currency, booking.Total,
		booking.Subtotal-booking.Discount, booking.Tax, booking.GatewayFee, domain.AccountBookingsRevenue)
}

func (s *LedgerService) post(ctx context.Context, kind domain.LedgerSource, sourceID, currency string,
	total, revenue, tax, fee int64, revenueAccount domain.LedgerAccount) error {

	existing, err := s.ledger.ListEntries(ctx, kind, sourceID)
	if err != nil {
		return fmt.Errorf("check existing entries: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%s %s: %w", kind, sourceID, domain.ErrDuplicate)
	}

	postedAt := s.now()
	entry := func(account domain.LedgerAccount, side domain.LedgerSide, amount int64) domain.LedgerEntry {
		return domain.LedgerEntry{
			ID:         uuid.NewString(),
			SourceKind: kind,
			SourceID:   sourceID,
			Account:    account,
			Side:       side,
			Amount:     amount,
			Currency:   currency,
			PostedAt:   postedAt,
		}
	}

	entries := []domain.LedgerEntry{
		entry(domain.AccountCash, domain.LedgerDebit, total),
		entry(revenueAccount, domain.LedgerCredit, revenue),
	}
	if tax > 0 {
		entries = append(entries, entry(domain.AccountTaxPayable, domain.LedgerCredit, tax))
	}
	if fee > 0 {
		entries = append(entries, entry(domain.AccountGatewayFees, domain.LedgerCredit, fee))
	}

	if err := s.ledger.CreateEntries(ctx, entries); err != nil {
		return fmt.Errorf("create entries: %w", err)
	}
	return nil
}

func (s *LedgerService) Entries(ctx context.Context, kind domain.LedgerSource, sourceID string) ([]domain.LedgerEntry, error) {
	return s.ledger.ListEntries(ctx, kind, sourceID)
}

// ReconciliationReport lists every disagreement between paid transactions
// and the stored ledger in a window.
type ReconciliationReport struct {
	From time.Time
	To   time.Time

	// Missing are paid sources with no ledger entries.
	Missing []SourceRef
	// Unbalanced are sources whose debits and credits differ.
	Unbalanced []SourceRef
	// Mismatched are sources whose cash debit differs from the paid total.
	Mismatched []SourceRef
	// Orphaned are ledger sources with no matching paid transaction.
	Orphaned []SourceRef
}

type SourceRef struct {
	Kind domain.LedgerSource
	ID   string
}

func (r ReconciliationReport) Clean() bool {
	return len(r.Missing) == 0 && len(r.Unbalanced) == 0 && len(r.Mismatched) == 0 && len(r.Orphaned) == 0
}

// paidOrderStatuses are order statuses at or past payment; refunds keep
// their posting and are reconciled as paid.
var paidOrderStatuses = []domain.OrderStatus{
	domain.OrderStatusPaid,
	domain.OrderStatusProcessing,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
	domain.OrderStatusRefunded,
}

var paidBookingStatuses = []domain.BookingStatus{
	domain.BookingStatusConfirmed,
	domain.BookingStatusCompleted,
	domain.BookingStatusNoShow,
}

// Reconcile compares paid orders/bookings created in [from, to] against
// the ledger and reports every source that is missing, unbalanced,
// mismatched, or orphaned. Each paid source's posting is looked up
// directly so a posting outside the window still counts, and an
// in-window entry is orphaned only when its source is not a paid
// transaction, no matter when that transaction was created.
func (s *LedgerService) Reconcile(ctx context.Context, from, to time.Time) (*ReconciliationReport, error) {
	paidTotals := make(map[SourceRef]int64)

	for _, status := range paidOrderStatuses {
		orders, err := s.orders.ListOrders(ctx, port.OrderFilter{Status: status, From: from, To: to})
		if err != nil {
			return nil, fmt.Errorf("list %s orders: %w", status, err)
		}
		for _, o := range orders {
			paidTotals[SourceRef{Kind: domain.LedgerSourceOrder, ID: o.ID}] = o.Total
		}
	}
	for _, status := range paidBookingStatuses {
		bookings, err := s.bookings.ListBookings(ctx, port.BookingFilter{Status: status, From: from, To: to})
		if err != nil {
			return nil, fmt.Errorf("list %s bookings: %w", status, err)
		}
		for _, b := range bookings {
			paidTotals[SourceRef{Kind: domain.LedgerSourceBooking, ID: b.ID}] = b.Total
		}
	}

	report := &ReconciliationReport{From: from, To: to}
	for ref, total := range paidTotals {
		entries, err := s.ledger.ListEntries(ctx, ref.Kind, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("list %s %s entries: %w", ref.Kind, ref.ID, err)
		}
		if len(entries) == 0 {
			report.Missing = append(report.Missing, ref)
			continue
		}
		var debits, credits, cash int64
		for _, e := range entries {
			switch e.Side {
			case domain.LedgerDebit:
				debits += e.Amount
				if e.Account == domain.AccountCash {
					cash += e.Amount
				}
			case domain.LedgerCredit:
				credits += e.Amount
			}
		}
		if debits != credits {
			report.Unbalanced = append(report.Unbalanced, ref)
		}
		if cash != total {
			report.Mismatched = append(report.Mismatched, ref)
		}
	}

	entries, err := s.ledger.ListAllEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	seen := make(map[SourceRef]bool)
	for _, e := range entries {
		ref := SourceRef{Kind: e.SourceKind, ID: e.SourceID}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if _, ok := paidTotals[ref]; ok {
			continue
		}
		paid, err := s.sourcePaid(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !paid {
			report.Orphaned = append(report.Orphaned, ref)
		}
	}
	return report, nil
}

func (s *LedgerService) sourcePaid(ctx context.Context, ref SourceRef) (bool, error) {
	switch ref.Kind {
	case domain.LedgerSourceOrder:
		order, err := s.orders.GetOrder(ctx, ref.ID)
		if err != nil {
			return false, fmt.Errorf("get order %s: %w", ref.ID, err)
		}
		if order == nil {
			return false, nil
		}
		for _, status := range paidOrderStatuses {
			if order.Status == status {
				return true, nil
			}
		}
	case domain.LedgerSourceBooking:
		booking, err := s.bookings.GetBooking(ctx, ref.ID)
		if err != nil {
			return false, fmt.Errorf("get booking %s: %w", ref.ID, err)
		}
		if booking == nil {
			return false, nil
		}
		for _, status := range paidBookingStatuses {
			if booking.Status == status {
				return true, nil
			}
		}
	}
	return false, nil
}
