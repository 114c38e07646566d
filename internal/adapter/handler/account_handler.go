package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/core/service"
	"github.com/tiyeni/storefront/internal/port"
)

// AccountHandler serves the signed-in customer's orders, bookings and
// review submission.
type AccountHandler struct {
	orders   *service.OrderService
	bookings *service.BookingService
	reviews  *service.ReviewService
}

func NewAccountHandler(orders *service.OrderService, bookings *service.BookingService, reviews *service.ReviewService) *AccountHandler {
	return &AccountHandler{orders: orders, bookings: bookings, reviews: reviews}
}

// ListOrders handles GET /api/me/orders
func (h *AccountHandler) ListOrders(c *gin.Context) {
	claims := mustClaims(c)
	orders, err := h.orders.List(c.Request.Context(), port.OrderFilter{UserID: claims.UserID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder handles GET /api/me/orders/:id
func (h *AccountHandler) GetOrder(c *gin.Context) {
	claims := mustClaims(c)
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if order.UserID != claims.UserID {
		respondError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /api/me/orders/:id/cancel
func (h *AccountHandler) CancelOrder(c *gin.Context) {
	claims := mustClaims(c)
	order, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type bookingRequest struct {
	ItemID    string    `json:"item_id" binding:"required"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
	Guests    int       `json:"guests"`
	Notes     string    `json:"notes"`
	PromoCode string    `json:"promo_code"`
	ReturnURL string    `json:"return_url"`
}

// CreateBooking handles POST /api/me/bookings
func (h *AccountHandler) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	claims := mustClaims(c)
	result, err := h.bookings.Book(c.Request.Context(), service.BookingInput{
		UserID:    claims.UserID,
		Email:     claims.Email,
		ItemID:    req.ItemID,
		StartsAt:  req.StartsAt,
		Guests:    req.Guests,
		Notes:     req.Notes,
		PromoCode: req.PromoCode,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":      result.Booking,
		"checkout_url": result.CheckoutURL,
	})
}

// ListBookings handles GET /api/me/bookings
func (h *AccountHandler) ListBookings(c *gin.Context) {
	claims := mustClaims(c)
	bookings, err := h.bookings.List(c.Request.Context(), port.BookingFilter{UserID: claims.UserID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBooking handles POST /api/me/bookings/:id/cancel
func (h *AccountHandler) CancelBooking(c *gin.Context) {
	claims := mustClaims(c)
	booking, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type reviewRequest struct {
	ItemID       string `json:"item_id" binding:"required"`
	Rating       int    `json:"rating" binding:"required"`
	Comment      string `json:"comment"`
	CaptchaToken string `json:"captcha_token" binding:"required"`
}

// SubmitReview handles POST /api/me/reviews
func (h *AccountHandler) SubmitReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	claims := mustClaims(c)
	review, err := h.reviews.Submit(c.Request.Context(), service.ReviewInput{
		UserID:       claims.UserID,
		ItemID:       req.ItemID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
