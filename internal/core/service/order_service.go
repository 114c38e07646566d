package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// OrderService reads orders and drives them through the status table.
type OrderService struct {
	orders port.OrderRepository
	items  port.ItemRepository
	cache  port.CacheRepository
	events port.EventPublisher
}

func NewOrderService(orders port.OrderRepository, items port.ItemRepository, cache port.CacheRepository, events port.EventPublisher) *OrderService {
	return &OrderService{orders: orders, items: items, cache: cache, events: events}
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, filter)
}

// Transition moves an order to the requested status, enforcing the
// transition table. Cancelling restores stock.
func (s *OrderService) Transition(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}

	if err := s.orders.UpdateOrderStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if to == domain.OrderStatusCancelled {
		s.restoreStock(ctx, order)
	}

	order.Status = to
	s.publish(ctx, order, "order."+string(to))
	return order, nil
}

// Cancel is the customer-facing cancellation; only pending orders qualify.
func (s *OrderService) Cancel(ctx context.Context, id, userID string) (*domain.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return s.Transition(ctx, id, domain.OrderStatusCancelled)
}

func (s *OrderService) restoreStock(ctx context.Context, order *domain.Order) {
	for _, l := range order.Lines {
		_ = s.cache.IncrementStock(ctx, l.ItemID, l.Quantity)

		inv, err := s.items.GetInventory(ctx, l.ItemID)
		if err != nil || inv == nil {
			continue
		}
		inv.Stock += l.Quantity
		_ = s.items.UpdateInventory(ctx, *inv)
	}
}

func (s *OrderService) publish(ctx context.Context, order *domain.Order, kind string) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, port.Event{
		Kind:       kind,
		SourceKind: string(domain.LedgerSourceOrder),
		SourceID:   order.ID,
		UserID:     order.UserID,
		Amount:     order.Total,
		Currency:   order.Currency,
		Status:     string(order.Status),
	})
}
