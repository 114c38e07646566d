package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

// DashboardSummary is the admin dashboard aggregate: revenue over time,
// status breakdowns and best-selling items.
type DashboardSummary struct {
	From time.Time
	To   time.Time

	Revenue          int64
	OrderRevenue     int64
	BookingRevenue   int64
	RevenueByDay     []DailyRevenue
	OrdersByStatus   map[domain.OrderStatus]int
	BookingsByStatus map[domain.BookingStatus]int
	TopItems         []ItemSales
	AverageOrder     int64
}

type DailyRevenue struct {
	Date    string // YYYY-MM-DD
	Revenue int64
}

type ItemSales struct {
	ItemID   string
	ItemName string
	Quantity int
	Revenue  int64
}

// AnalyticsService aggregates orders and bookings for the dashboard.
// Everything is computed over fetched rows; nothing is precomputed.
type AnalyticsService struct {
	orders   port.OrderRepository
	bookings port.BookingRepository
}

func NewAnalyticsService(orders port.OrderRepository, bookings port.BookingRepository) *AnalyticsService {
	return &AnalyticsService{orders: orders, bookings: bookings}
}

func (s *AnalyticsService) Summary(ctx context.Context, from, to time.Time) (*DashboardSummary, error) {
	orders, err := s.orders.ListOrders(ctx, port.OrderFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	bookings, err := s.bookings.ListBookings(ctx, port.BookingFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	summary := &DashboardSummary{
		From:             from,
		To:               to,
		OrdersByStatus:   make(map[domain.OrderStatus]int),
		BookingsByStatus: make(map[domain.BookingStatus]int),
	}

	byDay := make(map[string]int64)
	sales := make(map[string]*ItemSales)
	var paidOrders int

	for _, o := range orders {
		summary.OrdersByStatus[o.Status]++
		if !orderCountsAsRevenue(o.Status) {
			continue
		}
		paidOrders++
		summary.OrderRevenue += o.Total
		byDay[o.CreatedAt.Format("2006-01-02")] += o.Total
		for _, l := range o.Lines {
			is := sales[l.ItemID]
			if is == nil {
				is = &ItemSales{ItemID: l.ItemID, ItemName: l.ItemName}
				sales[l.ItemID] = is
			}
			is.Quantity += l.Quantity
			is.Revenue += l.Subtotal()
		}
	}

	for _, b := range bookings {
		summary.BookingsByStatus[b.Status]++
		if !bookingCountsAsRevenue(b.Status) {
			continue
		}
		summary.BookingRevenue += b.Total
		byDay[b.CreatedAt.Format("2006-01-02")] += b.Total
		is := sales[b.ItemID]
		if is == nil {
			is = &ItemSales{ItemID: b.ItemID, ItemName: b.ItemName}
			sales[b.ItemID] = is
		}
		is.Quantity++
		is.Revenue += b.Subtotal - b.Discount
	}

	summary.Revenue = summary.OrderRevenue + summary.BookingRevenue
	if paidOrders > 0 {
		summary.AverageOrder = summary.OrderRevenue / int64(paidOrders)
	}

	for day, revenue := range byDay {
		summary.RevenueByDay = append(summary.RevenueByDay, DailyRevenue{Date: day, Revenue: revenue})
	}
	sort.Slice(summary.RevenueByDay, func(i, j int) bool {
		return summary.RevenueByDay[i].Date < summary.RevenueByDay[j].Date
	})

	for _, is := range sales {
		summary.TopItems = append(summary.TopItems, *is)
	}
	sort.Slice(summary.TopItems, func(i, j int) bool {
		if summary.TopItems[i].Revenue != summary.TopItems[j].Revenue {
			return summary.TopItems[i].Revenue > summary.TopItems[j].Revenue
		}
		return summary.TopItems[i].ItemID < summary.TopItems[j].ItemID
	})
	if len(summary.TopItems) > 10 {
		summary.TopItems = summary.TopItems[:10]
	}

	return summary, nil
}

func orderCountsAsRevenue(s domain.OrderStatus) bool {
	switch s {
	case domain.OrderStatusPaid, domain.OrderStatusProcessing, domain.OrderStatusShipped, domain.OrderStatusDelivered:
		return true
	}
	return false
}

func bookingCountsAsRevenue(s domain.BookingStatus) bool {
	switch s {
	case domain.BookingStatusConfirmed, domain.BookingStatusCompleted, domain.BookingStatusNoShow:
		return true
	}
	return false
}
