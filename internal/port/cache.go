package port

import (
	"context"

	"github.com/tiyeni/storefront/internal/core/domain"
)

type CacheRepository interface {
	// DecrementStock atomically decreases cached stock, returns false if insufficient
	DecrementStock(ctx context.Context, itemID string, quantity int) (bool, error)

	// IncrementStock restores stock (for rollback on failure)
	IncrementStock(ctx context.Context, itemID string, quantity int) error

	// SetStock overwrites the cached stock level.
	SetStock(ctx context.Context, itemID string, quantity int) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}

// CartStore keeps session carts with a sliding expiry.
type CartStore interface {
	GetCart(ctx context.Context, sessionID string) (domain.Cart, error)
	AddLine(ctx context.Context, sessionID, itemID string, quantity int) error
	SetLine(ctx context.Context, sessionID, itemID string, quantity int) error
	RemoveLine(ctx context.Context, sessionID, itemID string) error
	ClearCart(ctx context.Context, sessionID string) error
}
