package port

import (
	"context"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
)

// ItemFilter narrows catalog listings. Zero values match everything.
type ItemFilter struct {
	Kind       domain.ItemKind
	Category   string
	ActiveOnly bool
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, id string) error

	// GetInventory returns nil, nil when no stock row exists.
	GetInventory(ctx context.Context, itemID string) (*domain.Inventory, error)
	// UpdateInventory applies the new stock level with a version check.
	UpdateInventory(ctx context.Context, inv domain.Inventory) error
	UpsertInventory(ctx context.Context, itemID string, stock int) error
}

type OrderFilter struct {
	UserID string
	Status domain.OrderStatus
	From   time.Time
	To     time.Time
}

type OrderRepository interface {
	// CreateOrder persists the order and its lines, decrementing stock
	// for each line in the same transaction.
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderByPaymentRef(ctx context.Context, txRef string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type BookingFilter struct {
	UserID string
	ItemID string
	Status domain.BookingStatus
	From   time.Time
	To     time.Time
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking domain.Booking) error
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	GetBookingByPaymentRef(ctx context.Context, txRef string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	// ListOverlapping returns non-cancelled bookings for the item whose
	// slots intersect [startsAt, endsAt).
	ListOverlapping(ctx context.Context, itemID string, startsAt, endsAt time.Time) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	GetReviewByUserItem(ctx context.Context, userID, itemID string) (*domain.Review, error)
	ListReviews(ctx context.Context, itemID string, status domain.ReviewStatus) ([]domain.Review, error)
	UpdateReviewStatus(ctx context.Context, id string, status domain.ReviewStatus) error
}

type PromotionRepository interface {
	CreatePromotion(ctx context.Context, promo domain.Promotion) error
	GetPromotion(ctx context.Context, id string) (*domain.Promotion, error)
	GetPromotionByCode(ctx context.Context, code string) (*domain.Promotion, error)
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	UpdatePromotion(ctx context.Context, promo domain.Promotion) error
	// IncrementUsage bumps the usage counter, failing when the limit
	// would be exceeded.
	IncrementUsage(ctx context.Context, id string) error
	// DecrementUsage returns a usage slot taken by a checkout that
	// later failed.
	DecrementUsage(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment domain.Payment) error
	GetPaymentByTxRef(ctx context.Context, txRef string) (*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, txRef string, status domain.PaymentStatus) error
}

type LedgerRepository interface {
	// CreateEntries persists one balanced posting atomically.
	CreateEntries(ctx context.Context, entries []domain.LedgerEntry) error
	ListEntries(ctx context.Context, sourceKind domain.LedgerSource, sourceID string) ([]domain.LedgerEntry, error)
	ListAllEntries(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error)
}
