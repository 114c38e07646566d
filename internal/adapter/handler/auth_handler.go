package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiyeni/storefront/internal/auth"
	"github.com/tiyeni/storefront/internal/core/service"
)

type AuthHandler struct {
	users  *service.UserService
	issuer *auth.TokenIssuer
}

func NewAuthHandler(users *service.UserService, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.issuer.Issue(*user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: string(user.Role)},
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: "invalid request body"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.issuer.Issue(*user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: string(user.Role)},
	})
}
