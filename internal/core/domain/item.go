package domain

import "time"

type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindService ItemKind = "service"
)

// Item is a product or bookable service sold by the business.
// Prices are in minor currency units.
type Item struct {
	ID          string
	Kind        ItemKind
	Name        string
	Description string
	Category    string
	Price       int64
	Currency    string
	ImageURL    string
	Active      bool

	// Service-only fields.
	DurationMin int
	Capacity    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i Item) Validate() error {
	if i.Name == "" {
		return Invalid("name", "must not be empty")
	}
	if i.Kind != ItemKindProduct && i.Kind != ItemKindService {
		return Invalid("kind", "must be product or service")
	}
	if i.Price < 0 {
		return Invalid("price", "must not be negative")
	}
	if i.Kind == ItemKindService && i.DurationMin <= 0 {
		return Invalid("duration_min", "must be positive for services")
	}
	return nil
}
