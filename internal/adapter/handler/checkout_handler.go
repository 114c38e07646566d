package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/core/service"
)

// CheckoutHandler drives checkout and payment confirmation.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	payments *service.PaymentService
}

func NewCheckoutHandler(checkout *service.CheckoutService, payments *service.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, payments: payments}
}

type checkoutRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	PromoCode string `json:"promo_code"`
	ReturnURL string `json:"return_url"`
}

// Checkout handles POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	claims := mustClaims(c)
	result, err := h.checkout.Checkout(c.Request.Context(), service.CheckoutInput{
		RequestID: req.RequestID,
		SessionID: SessionID(c),
		UserID:    claims.UserID,
		Email:     claims.Email,
		PromoCode: req.PromoCode,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":     result.OrderID,
		"tx_ref":       result.TxRef,
		"checkout_url": result.CheckoutURL,
		"subtotal":     result.Quote.Subtotal,
		"discount":     result.Quote.Discount,
		"tax":          result.Quote.Tax,
		"gateway_fee":  result.Quote.GatewayFee,
		"total":        result.Quote.Total,
	})
}

// ConfirmPayment handles POST /api/payments/:txRef/confirm. It is called
// by the return redirect and by the gateway webhook; both verify
// server-side with the gateway before anything changes.
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	result, err := h.payments.Confirm(c.Request.Context(), c.Param("txRef"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source_kind": result.SourceKind,
		"source_id":   result.SourceID,
		"amount":      result.Amount,
		"paid":        true,
	})
}
