package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// orderTransitions is the fixed transition table. Statuses with no entry are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

type OrderLine struct {
	ItemID    string
	ItemName  string
	UnitPrice int64
	Quantity  int
}

func (l OrderLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

type Order struct {
	ID         string
	UserID     string
	Lines      []OrderLine
	PromoCode  string
	Subtotal   int64
	Discount   int64
	GatewayFee int64
	Tax        int64
	Total      int64
	Currency   string
	Status     OrderStatus
	PaymentRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContainsItem reports whether any line references the item.
func (o Order) ContainsItem(itemID string) bool {
	for _, l := range o.Lines {
		if l.ItemID == itemID {
			return true
		}
	}
	return false
}
