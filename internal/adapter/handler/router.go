package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/auth"
)

// NewRouter wires all handlers onto a gin engine.
func NewRouter(
	issuer *auth.TokenIssuer,
	authH *AuthHandler,
	catalogH *CatalogHandler,
	cartH *CartHandler,
	checkoutH *CheckoutHandler,
	accountH *AccountHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	api.GET("/items", catalogH.ListItems)
	api.GET("/items/:id", catalogH.GetItem)
	api.GET("/items/:id/reviews", catalogH.ListItemReviews)
	api.GET("/promotions/:code", catalogH.CheckPromotion)

	api.GET("/cart", cartH.Get)
	api.POST("/cart/items", cartH.Add)
	api.PUT("/cart/items/:itemID", cartH.Update)
	api.DELETE("/cart/items/:itemID", cartH.Remove)
	api.DELETE("/cart", cartH.Clear)

	// Payment confirmation is unauthenticated: the gateway webhook has no
	// session, and the handler trusts nothing but the gateway verify call.
	api.POST("/payments/:txRef/confirm", checkoutH.ConfirmPayment)

	authed := api.Group("", Authenticate(issuer))
	authed.POST("/checkout", checkoutH.Checkout)
	authed.GET("/me/orders", accountH.ListOrders)
	authed.GET("/me/orders/:id", accountH.GetOrder)
	authed.POST("/me/orders/:id/cancel", accountH.CancelOrder)
	authed.POST("/me/bookings", accountH.CreateBooking)
	authed.GET("/me/bookings", accountH.ListBookings)
	authed.POST("/me/bookings/:id/cancel", accountH.CancelBooking)
	authed.POST("/me/reviews", accountH.SubmitReview)

	admin := api.Group("/admin", Authenticate(issuer), RequireAdmin())
	admin.GET("/items", adminH.ListItems)
	admin.POST("/items", adminH.CreateItem)
	admin.PUT("/items/:id", adminH.UpdateItem)
	admin.DELETE("/items/:id", adminH.DeleteItem)
	admin.PUT("/items/:id/stock", adminH.SetStock)
	admin.GET("/promotions", adminH.ListPromotions)
	admin.POST("/promotions", adminH.CreatePromotion)
	admin.PUT("/promotions/:id", adminH.UpdatePromotion)
	admin.GET("/orders", adminH.ListOrders)
	admin.PUT("/orders/:id/status", adminH.UpdateOrderStatus)
	admin.GET("/bookings", adminH.ListBookings)
	admin.PUT("/bookings/:id/status", adminH.UpdateBookingStatus)
	admin.GET("/reviews", adminH.ListPendingReviews)
	admin.POST("/reviews/:id/moderate", adminH.ModerateReview)
	admin.GET("/analytics", adminH.Analytics)
	admin.GET("/ledger/reconcile", adminH.Reconcile)

	return r
}
