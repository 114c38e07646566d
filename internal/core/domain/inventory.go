package domain

import "time"

// Inventory tracks sellable stock for a product item.
type Inventory struct {
	ItemID    string
	Stock     int
	Version   int // optimistic locking
	CreatedAt time.Time
	UpdatedAt time.Time
}
