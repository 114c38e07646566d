package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/core/service"
	"github.com/tiyeni/storefront/internal/port"
)

// CatalogHandler serves the public catalog and approved reviews.
type CatalogHandler struct {
	catalog *service.CatalogService
	reviews *service.ReviewService
	promos  *service.PromotionService
}

func NewCatalogHandler(catalog *service.CatalogService, reviews *service.ReviewService, promos *service.PromotionService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reviews: reviews, promos: promos}
}

// ListItems handles GET /api/items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	filter := port.ItemFilter{
		Kind:       domain.ItemKind(c.Query("kind")),
		Category:   c.Query("category"),
		ActiveOnly: true,
	}

	items, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetItem handles GET /api/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !item.Active {
		respondError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItemReviews handles GET /api/items/:id/reviews
func (h *CatalogHandler) ListItemReviews(c *gin.Context) {
	reviews, err := h.reviews.ListApproved(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// CheckPromotion handles GET /api/promotions/:code
func (h *CatalogHandler) CheckPromotion(c *gin.Context) {
	promo, err := h.promos.Check(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":  promo.Code,
		"kind":  promo.Kind,
		"value": promo.Value,
	})
}
