package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Booking reserves a service item for a time slot.
type Booking struct {
	ID         string
	UserID     string
	ItemID     string
	ItemName   string
	StartsAt   time.Time
	EndsAt     time.Time
	Guests     int
	Notes      string
	PromoCode  string
	Subtotal   int64
	Discount   int64
	GatewayFee int64
	Tax        int64
	Total      int64
	Currency   string
	Status     BookingStatus
	PaymentRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Overlaps reports whether two slots on the same item conflict.
func (b Booking) Overlaps(startsAt, endsAt time.Time) bool {
	return b.StartsAt.Before(endsAt) && startsAt.Before(b.EndsAt)
}
