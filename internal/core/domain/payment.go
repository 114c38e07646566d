package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment records one gateway transaction for an order or booking.
type Payment struct {
	ID         string
	TxRef      string
	SourceKind LedgerSource
	SourceID   string
	Amount     int64
	Currency   string
	Status     PaymentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
