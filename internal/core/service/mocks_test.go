package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

// In-memory fakes for the repository and gateway ports.

type mockCacheRepo struct {
	mu             sync.Mutex
	stock          map[string]int
	idempotencySet map[string]bool
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		stock:          make(map[string]int),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) DecrementStock(_ context.Context, itemID string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stock[itemID] >= quantity {
		m.stock[itemID] -= quantity
		return true, nil
	}
	return false, nil
}

func (m *mockCacheRepo) IncrementStock(_ context.Context, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] += quantity
	return nil
}

func (m *mockCacheRepo) SetStock(_ context.Context, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] = quantity
	return nil
}

func (m *mockCacheRepo) SetIdempotency(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) stockOf(itemID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[itemID]
}

type mockCartStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]map[string]int)}
}

func (m *mockCartStore) GetCart(_ context.Context, sessionID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart := domain.Cart{SessionID: sessionID}
	for itemID, qty := range m.carts[sessionID] {
		cart.Lines = append(cart.Lines, domain.CartLine{ItemID: itemID, Quantity: qty})
	}
	return cart, nil
}

func (m *mockCartStore) AddLine(_ context.Context, sessionID, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.carts[sessionID] == nil {
		m.carts[sessionID] = make(map[string]int)
	}
	m.carts[sessionID][itemID] += quantity
	return nil
}

func (m *mockCartStore) SetLine(_ context.Context, sessionID, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.carts[sessionID] == nil {
		m.carts[sessionID] = make(map[string]int)
	}
	m.carts[sessionID][itemID] = quantity
	return nil
}

func (m *mockCartStore) RemoveLine(_ context.Context, sessionID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts[sessionID], itemID)
	return nil
}

func (m *mockCartStore) ClearCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

type mockItemRepo struct {
	mu        sync.Mutex
	items     map[string]domain.Item
	inventory map[string]domain.Inventory
}

func newMockItemRepo(items ...domain.Item) *mockItemRepo {
	m := &mockItemRepo{
		items:     make(map[string]domain.Item),
		inventory: make(map[string]domain.Inventory),
	}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *mockItemRepo) CreateItem(_ context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockItemRepo) GetItem(_ context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *mockItemRepo) ListItems(_ context.Context, filter port.ItemFilter) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []domain.Item
	for _, item := range m.items {
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.ActiveOnly && !item.Active {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *mockItemRepo) UpdateItem(_ context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockItemRepo) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *mockItemRepo) GetInventory(_ context.Context, itemID string) (*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.inventory[itemID]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (m *mockItemRepo) UpdateInventory(_ context.Context, inv domain.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv.Version++
	m.inventory[inv.ItemID] = inv
	return nil
}

func (m *mockItemRepo) UpsertInventory(_ context.Context, itemID string, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := m.inventory[itemID]
	inv.ItemID = itemID
	inv.Stock = stock
	inv.Version++
	m.inventory[itemID] = inv
	return nil
}

type mockOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	createErr error
}

func newMockOrderRepo(orders ...domain.Order) *mockOrderRepo {
	m := &mockOrderRepo{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *mockOrderRepo) GetOrderByPaymentRef(_ context.Context, txRef string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.PaymentRef == txRef {
			return &o, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) ListOrders(_ context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []domain.Order
	for _, o := range m.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && o.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && o.CreatedAt.After(filter.To) {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *mockOrderRepo) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]domain.Booking
}

func newMockBookingRepo(bookings ...domain.Booking) *mockBookingRepo {
	m := &mockBookingRepo{bookings: make(map[string]domain.Booking)}
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *mockBookingRepo) CreateBooking(_ context.Context, b domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *mockBookingRepo) GetBooking(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *mockBookingRepo) GetBookingByPaymentRef(_ context.Context, txRef string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PaymentRef == txRef {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *mockBookingRepo) ListBookings(_ context.Context, filter port.BookingFilter) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bookings []domain.Booking
	for _, b := range m.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.ItemID != "" && b.ItemID != filter.ItemID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && b.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && b.CreatedAt.After(filter.To) {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (m *mockBookingRepo) ListOverlapping(_ context.Context, itemID string, startsAt, endsAt time.Time) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bookings []domain.Booking
	for _, b := range m.bookings {
		if b.ItemID != itemID {
			continue
		}
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
			continue
		}
		if b.Overlaps(startsAt, endsAt) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (m *mockBookingRepo) UpdateBookingStatus(_ context.Context, id string, status domain.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	m.bookings[id] = b
	return nil
}

type mockReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]domain.Review
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]domain.Review)}
}

func (m *mockReviewRepo) CreateReview(_ context.Context, r domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[r.ID] = r
	return nil
}

func (m *mockReviewRepo) GetReview(_ context.Context, id string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *mockReviewRepo) GetReviewByUserItem(_ context.Context, userID, itemID string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.UserID == userID && r.ItemID == itemID {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *mockReviewRepo) ListReviews(_ context.Context, itemID string, status domain.ReviewStatus) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reviews []domain.Review
	for _, r := range m.reviews {
		if itemID != "" && r.ItemID != itemID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

func (m *mockReviewRepo) UpdateReviewStatus(_ context.Context, id string, status domain.ReviewStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	m.reviews[id] = r
	return nil
}

type mockPromotionRepo struct {
	mu     sync.Mutex
	promos map[string]domain.Promotion
}

func newMockPromotionRepo(promos ...domain.Promotion) *mockPromotionRepo {
	m := &mockPromotionRepo{promos: make(map[string]domain.Promotion)}
	for _, p := range promos {
		m.promos[p.ID] = p
	}
	return m
}

func (m *mockPromotionRepo) CreatePromotion(_ context.Context, p domain.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promos[p.ID] = p
	return nil
}

func (m *mockPromotionRepo) GetPromotion(_ context.Context, id string) (*domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockPromotionRepo) GetPromotionByCode(_ context.Context, code string) (*domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.promos {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockPromotionRepo) ListPromotions(_ context.Context) ([]domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var promos []domain.Promotion
	for _, p := range m.promos {
		promos = append(promos, p)
	}
	return promos, nil
}

func (m *mockPromotionRepo) UpdatePromotion(_ context.Context, p domain.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promos[p.ID] = p
	return nil
}

func (m *mockPromotionRepo) IncrementUsage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return errors.New("usage limit reached")
	}
	p.UsageCount++
	m.promos[id] = p
	return nil
}

func (m *mockPromotionRepo) DecrementUsage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.UsageCount > 0 {
		p.UsageCount--
		m.promos[id] = p
	}
	return nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]domain.Payment
}

func newMockPaymentRepo(payments ...domain.Payment) *mockPaymentRepo {
	m := &mockPaymentRepo{payments: make(map[string]domain.Payment)}
	for _, p := range payments {
		m.payments[p.TxRef] = p
	}
	return m
}

func (m *mockPaymentRepo) CreatePayment(_ context.Context, p domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.TxRef] = p
	return nil
}

func (m *mockPaymentRepo) GetPaymentByTxRef(_ context.Context, txRef string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[txRef]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockPaymentRepo) UpdatePaymentStatus(_ context.Context, txRef string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[txRef]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	m.payments[txRef] = p
	return nil
}

type mockLedgerRepo struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{}
}

func (m *mockLedgerRepo) CreateEntries(_ context.Context, entries []domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockLedgerRepo) ListEntries(_ context.Context, kind domain.LedgerSource, sourceID string) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []domain.LedgerEntry
	for _, e := range m.entries {
		if e.SourceKind == kind && e.SourceID == sourceID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *mockLedgerRepo) ListAllEntries(_ context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []domain.LedgerEntry
	for _, e := range m.entries {
		if !from.IsZero() && e.PostedAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.PostedAt.After(to) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type mockGateway struct {
	mu          sync.Mutex
	initiateErr error
	verified    map[string]*port.Charge
	initiated   []port.ChargeRequest
}

func newMockGateway() *mockGateway {
	return &mockGateway{verified: make(map[string]*port.Charge)}
}

func (m *mockGateway) InitiateCharge(_ context.Context, req port.ChargeRequest) (*port.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initiateErr != nil {
		return nil, m.initiateErr
	}
	m.initiated = append(m.initiated, req)
	return &port.Charge{
		TxRef:       req.TxRef,
		CheckoutURL: "https://checkout.example/" + req.TxRef,
		Amount:      req.Amount,
		Currency:    req.Currency,
	}, nil
}

func (m *mockGateway) VerifyCharge(_ context.Context, txRef string) (*port.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	charge, ok := m.verified[txRef]
	if !ok {
		return &port.Charge{TxRef: txRef}, nil
	}
	return charge, nil
}

func (m *mockGateway) markPaid(txRef string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified[txRef] = &port.Charge{TxRef: txRef, Amount: amount, Paid: true}
}

type mockCaptcha struct {
	ok bool
}

func (m *mockCaptcha) Verify(_ context.Context, _, _ string) (bool, error) {
	return m.ok, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []port.Event
}

func (m *mockPublisher) Publish(_ context.Context, event port.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}
