package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/core/service"
	"github.com/tiyeni/storefront/internal/port"
)

// AdminHandler is the dashboard API: catalog and promotion management,
// order/booking fulfilment, review moderation, analytics and ledger
// reconciliation.
type AdminHandler struct {
	catalog   *service.CatalogService
	promos    *service.PromotionService
	orders    *service.OrderService
	bookings  *service.BookingService
	reviews   *service.ReviewService
	analytics *service.AnalyticsService
	ledger    *service.LedgerService
}

func NewAdminHandler(
	catalog *service.CatalogService,
	promos *service.PromotionService,
	orders *service.OrderService,
	bookings *service.BookingService,
	reviews *service.ReviewService,
	analytics *service.AnalyticsService,
	ledger *service.LedgerService,
) *AdminHandler {
	return &AdminHandler{
		catalog:   catalog,
		promos:    promos,
		orders:    orders,
		bookings:  bookings,
		reviews:   reviews,
		analytics: analytics,
		ledger:    ledger,
	}
}

type itemRequest struct {
	Kind        string `json:"kind" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"image_url"`
	Active      bool   `json:"active"`
	DurationMin int    `json:"duration_min"`
	Capacity    int    `json:"capacity"`
}

func (r itemRequest) toDomain() domain.Item {
	return domain.Item{
		Kind:        domain.ItemKind(r.Kind),
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Currency:    r.Currency,
		ImageURL:    r.ImageURL,
		Active:      r.Active,
		DurationMin: r.DurationMin,
		Capacity:    r.Capacity,
	}
}

// CreateItem handles POST /api/admin/items
func (h *AdminHandler) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	item, err := h.catalog.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem handles PUT /api/admin/items/:id
func (h *AdminHandler) UpdateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	item := req.toDomain()
	item.ID = c.Param("id")
	updated, err := h.catalog.Update(c.Request.Context(), item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/admin/items/:id
func (h *AdminHandler) DeleteItem(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListItems handles GET /api/admin/items (inactive included)
func (h *AdminHandler) ListItems(c *gin.Context) {
	items, err := h.catalog.List(c.Request.Context(), port.ItemFilter{
		Kind:     domain.ItemKind(c.Query("kind")),
		Category: c.Query("category"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type stockRequest struct {
	Stock int `json:"stock"`
}

// SetStock handles PUT /api/admin/items/:id/stock
func (h *AdminHandler) SetStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	if err := h.catalog.SetStock(c.Request.Context(), c.Param("id"), req.Stock); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": c.Param("id"), "stock": req.Stock})
}

type promotionRequest struct {
	Code       string    `json:"code" binding:"required"`
	Kind       string    `json:"kind" binding:"required"`
	Value      int64     `json:"value" binding:"required"`
	ItemIDs    []string  `json:"item_ids"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	UsageLimit int       `json:"usage_limit"`
	Active     bool      `json:"active"`
}

func (r promotionRequest) toDomain() domain.Promotion {
	return domain.Promotion{
		Code:       r.Code,
		Kind:       domain.PromotionKind(r.Kind),
		Value:      r.Value,
		ItemIDs:    r.ItemIDs,
		StartsAt:   r.StartsAt,
		EndsAt:     r.EndsAt,
		UsageLimit: r.UsageLimit,
		Active:     r.Active,
	}
}

// CreatePromotion handles POST /api/admin/promotions
func (h *AdminHandler) CreatePromotion(c *gin.Context) {
	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	promo, err := h.promos.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}

// UpdatePromotion handles PUT /api/admin/promotions/:id
func (h *AdminHandler) UpdatePromotion(c *gin.Context) {
	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	promo := req.toDomain()
	promo.ID = c.Param("id")
	updated, err := h.promos.Update(c.Request.Context(), promo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListPromotions handles GET /api/admin/promotions
func (h *AdminHandler) ListPromotions(c *gin.Context) {
	promos, err := h.promos.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": promos})
}

// ListOrders handles GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), port.OrderFilter{
		UserID: c.Query("user_id"),
		Status: domain.OrderStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PUT /api/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	order, err := h.orders.Transition(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListBookings handles GET /api/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookings.List(c.Request.Context(), port.BookingFilter{
		UserID: c.Query("user_id"),
		ItemID: c.Query("item_id"),
		Status: domain.BookingStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// UpdateBookingStatus handles PUT /api/admin/bookings/:id/status
func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	booking, err := h.bookings.Transition(c.Request.Context(), c.Param("id"), domain.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ListPendingReviews handles GET /api/admin/reviews
func (h *AdminHandler) ListPendingReviews(c *gin.Context) {
	reviews, err := h.reviews.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

type moderateRequest struct {
	Approve bool `json:"approve"`
}

// ModerateReview handles POST /api/admin/reviews/:id/moderate
func (h *AdminHandler) ModerateReview(c *gin.Context) {
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	review, err := h.reviews.Moderate(c.Request.Context(), c.Param("id"), req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Analytics handles GET /api/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	from, to := timeWindow(c)
	summary, err := h.analytics.Summary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Reconcile handles GET /api/admin/ledger/reconcile
func (h *AdminHandler) Reconcile(c *gin.Context) {
	from, to := timeWindow(c)
	report, err := h.ledger.Reconcile(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "clean": report.Clean()})
}

// timeWindow parses the from/to query params, defaulting to the last 30 days.
func timeWindow(c *gin.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = t
		}
	}
	return from, to
}
