package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/core/pricing"
	"github.com/tiyeni/storefront/internal/core/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps service and domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: ve.Error()})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, service.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "UNAUTHENTICATED", Message: "authentication required"})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, service.ErrNotEligible):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "FORBIDDEN", Message: "not allowed"})
	case errors.Is(err, domain.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "DUPLICATE", Message: "already exists"})
	case errors.Is(err, service.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "DUPLICATE_REQUEST", Message: "duplicate request"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, service.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "SLOT_UNAVAILABLE", Message: "the slot is no longer available"})
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusGone, ErrorResponse{Error: "SOLD_OUT", Message: "sold out"})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "EMPTY_CART", Message: "cannot checkout an empty cart"})
	case errors.Is(err, service.ErrCaptchaFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "CAPTCHA_FAILED", Message: "captcha verification failed"})
	case errors.Is(err, pricing.ErrPromotionNotUsable), errors.Is(err, pricing.ErrPromotionNotApplicable):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "PROMO_INVALID", Message: "promotion cannot be applied"})
	case errors.Is(err, service.ErrPaymentNotCompleted):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "PAYMENT_INCOMPLETE", Message: "payment not completed"})
	case errors.Is(err, service.ErrAmountMismatch):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "AMOUNT_MISMATCH", Message: "paid amount does not match"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL", Message: "internal error"})
	}
}
