package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiyeni/storefront/internal/core/domain"
)

func newCartFixture(t *testing.T) (*CartService, *mockCartStore, *mockItemRepo) {
	t.Helper()
	items := newMockItemRepo(
		domain.Item{ID: "fabric", Kind: domain.ItemKindProduct, Name: "Chitenje Fabric", Price: 6500, Active: true},
		domain.Item{ID: "coffee", Kind: domain.ItemKindProduct, Name: "Mzuzu Coffee", Price: 4000, Active: true},
		domain.Item{ID: "fitting", Kind: domain.ItemKindService, Name: "Tailoring Fitting", Price: 9000, Active: true, DurationMin: 60},
		domain.Item{ID: "retired", Kind: domain.ItemKindProduct, Name: "Retired", Price: 1000, Active: false},
	)
	carts := newMockCartStore()
	return NewCartService(carts, items), carts, items
}

func TestCartAddAndGet(t *testing.T) {
	svc, _, _ := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "sess-1", "fabric", 2))
	require.NoError(t, svc.Add(ctx, "sess-1", "coffee", 1))

	view, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	assert.Equal(t, int64(17000), view.Subtotal)
}

func TestCartAdd_InactiveItem(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	err := svc.Add(context.Background(), "sess-1", "retired", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartAdd_ServiceRejected(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	err := svc.Add(context.Background(), "sess-1", "fitting", 1)
	assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
}

func TestCartAdd_NonPositiveQuantity(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	err := svc.Add(context.Background(), "sess-1", "fabric", 0)
	assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
}

func TestCartSetQuantity_ZeroRemovesLine(t *testing.T) {
	svc, _, _ := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "sess-1", "fabric", 2))
	require.NoError(t, svc.SetQuantity(ctx, "sess-1", "fabric", 0))

	view, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCartGet_DropsVanishedItems(t *testing.T) {
	svc, carts, items := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "sess-1", "fabric", 1))
	require.NoError(t, items.DeleteItem(ctx, "fabric"))

	view, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	// The stale line is pruned from the store, not just the view.
	cart, err := carts.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestCartClear(t *testing.T) {
	svc, _, _ := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "sess-1", "fabric", 1))
	require.NoError(t, svc.Clear(ctx, "sess-1"))

	view, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}
