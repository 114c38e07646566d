package domain

import "time"

type LedgerAccount string

const (
	AccountCash            LedgerAccount = "cash"
	AccountGatewayFees     LedgerAccount = "gateway_fees"
	AccountTaxPayable      LedgerAccount = "tax_payable"
	AccountSalesRevenue    LedgerAccount = "sales_revenue"
	AccountBookingsRevenue LedgerAccount = "bookings_revenue"
)

type LedgerSide string

const (
	LedgerDebit  LedgerSide = "debit"
	LedgerCredit LedgerSide = "credit"
)

type LedgerSource string

const (
	LedgerSourceOrder   LedgerSource = "order"
	LedgerSourceBooking LedgerSource = "booking"
)

// LedgerEntry is one leg of a double-entry posting derived from a paid
// order or booking. All entries for a source must balance.
type LedgerEntry struct {
	ID         string
	SourceKind LedgerSource
	SourceID   string
	Account    LedgerAccount
	Side       LedgerSide
	Amount     int64
	Currency   string
	PostedAt   time.Time
}
