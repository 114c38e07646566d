package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiyeni/storefront/internal/auth"
	"github.com/tiyeni/storefront/internal/core/domain"
)

const (
	claimsKey        = "claims"
	sessionCookie    = "cart_session"
	sessionCookieAge = 7 * 24 * 60 * 60
)

// Authenticate validates the bearer token and stores its claims on the
// context. Requests without a valid token are rejected.
func Authenticate(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "UNAUTHENTICATED",
				Message: "missing bearer token",
			})
			return
		}

		claims, err := issuer.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "UNAUTHENTICATED",
				Message: "invalid token",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects authenticated requests from non-admin users.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := mustClaims(c)
		if claims == nil || claims.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   "FORBIDDEN",
				Message: "admin role required",
			})
			return
		}
		c.Next()
	}
}

func mustClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// SessionID returns the cart session from the request cookie, minting one
// when absent.
func SessionID(c *gin.Context) string {
	if sid, err := c.Cookie(sessionCookie); err == nil && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	c.SetCookie(sessionCookie, sid, sessionCookieAge, "/", "", false, true)
	return sid
}
