package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

// CatalogService manages the item catalog. Writes are admin-only; reads
// serve the public storefront.
type CatalogService struct {
	items port.ItemRepository
	cache port.CacheRepository
	now   func() time.Time
}

func NewCatalogService(items port.ItemRepository, cache port.CacheRepository) *CatalogService {
	return &CatalogService{items: items, cache: cache, now: time.Now}
}

func (s *CatalogService) Create(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.ID = uuid.NewString()
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &item, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *CatalogService) List(ctx context.Context, filter port.ItemFilter) ([]domain.Item, error) {
	return s.items.ListItems(ctx, filter)
}

func (s *CatalogService) Update(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.now()
	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// SetStock writes the stock level to the database and syncs the cached
// counter used by checkout.
func (s *CatalogService) SetStock(ctx context.Context, itemID string, stock int) error {
	if stock < 0 {
		return domain.Invalid("stock", "must not be negative")
	}
	if _, err := s.Get(ctx, itemID); err != nil {
		return err
	}
	if err := s.items.UpsertInventory(ctx, itemID, stock); err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	if err := s.cache.SetStock(ctx, itemID, stock); err != nil {
		return fmt.Errorf("sync cached stock: %w", err)
	}
	return nil
}

func (s *CatalogService) Stock(ctx context.Context, itemID string) (*domain.Inventory, error) {
	inv, err := s.items.GetInventory(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
