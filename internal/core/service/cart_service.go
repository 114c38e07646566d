package service

import (
	"context"
	"fmt"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

// CartView is a cart with catalog prices resolved.
type CartView struct {
	SessionID string
	Lines     []CartViewLine
	Subtotal  int64
}

type CartViewLine struct {
	ItemID    string
	ItemName  string
	UnitPrice int64
	Quantity  int
	Subtotal  int64
}

// CartService manages session carts stored in the cache.
type CartService struct {
	carts port.CartStore
	items port.ItemRepository
}

func NewCartService(carts port.CartStore, items port.ItemRepository) *CartService {
	return &CartService{carts: carts, items: items}
}

func (s *CartService) Get(ctx context.Context, sessionID string) (*CartView, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	view := &CartView{SessionID: sessionID}
	for _, cl := range cart.Lines {
		item, err := s.items.GetItem(ctx, cl.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve item %s: %w", cl.ItemID, err)
		}
		if item == nil {
			// Item removed from catalog since it was carted.
			_ = s.carts.RemoveLine(ctx, sessionID, cl.ItemID)
			continue
		}
		line := CartViewLine{
			ItemID:    item.ID,
			ItemName:  item.Name,
			UnitPrice: item.Price,
			Quantity:  cl.Quantity,
			Subtotal:  item.Price * int64(cl.Quantity),
		}
		view.Lines = append(view.Lines, line)
		view.Subtotal += line.Subtotal
	}
	return view, nil
}

func (s *CartService) Add(ctx context.Context, sessionID, itemID string, quantity int) error {
	if quantity <= 0 {
		return domain.Invalid("quantity", "must be positive")
	}
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("resolve item: %w", err)
	}
	if item == nil || !item.Active {
		return domain.ErrNotFound
	}
	if item.Kind != domain.ItemKindProduct {
		return domain.Invalid("item_id", "services are booked, not carted")
	}
	if err := s.carts.AddLine(ctx, sessionID, itemID, quantity); err != nil {
		return fmt.Errorf("add cart line: %w", err)
	}
	return nil
}

// SetQuantity overwrites a line quantity; zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, itemID string, quantity int) error {
	if quantity < 0 {
		return domain.Invalid("quantity", "must not be negative")
	}
	if quantity == 0 {
		return s.Remove(ctx, sessionID, itemID)
	}
	if err := s.carts.SetLine(ctx, sessionID, itemID, quantity); err != nil {
		return fmt.Errorf("set cart line: %w", err)
	}
	return nil
}

func (s *CartService) Remove(ctx context.Context, sessionID, itemID string) error {
	if err := s.carts.RemoveLine(ctx, sessionID, itemID); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
