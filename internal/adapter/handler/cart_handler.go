package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/core/service"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartLineRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// Get handles GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Add handles POST /api/cart/items
func (h *CartHandler) Add(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	sid := SessionID(c)
	if err := h.carts.Add(c.Request.Context(), sid, req.ItemID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.carts.Get(c.Request.Context(), sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update handles PUT /api/cart/items/:itemID
func (h *CartHandler) Update(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	sid := SessionID(c)
	if err := h.carts.SetQuantity(c.Request.Context(), sid, c.Param("itemID"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.carts.Get(c.Request.Context(), sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Remove handles DELETE /api/cart/items/:itemID
func (h *CartHandler) Remove(c *gin.Context) {
	sid := SessionID(c)
	if err := h.carts.Remove(c.Request.Context(), sid, c.Param("itemID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), SessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
