package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/http/middleware"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/service"
)

// AuthHandler exposes sign-up, login, and profile routes.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// SignUp creates a new user and returns an access token.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "error_description": "Invalid payload."})
		return
	}

	resp, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Login exchanges form credentials for an access token. The form follows the
// OAuth2 password request shape: the username field carries the email.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "error_description": "Username and password are required."})
		return
	}

	resp, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial update to the authenticated user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}

	var req struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
		FullName *string `json:"full_name"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "error_description": "Invalid payload."})
		return
	}

	updated, err := h.Auth.UpdateProfile(c.Request.Context(), user.ID, service.ProfileUpdate{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteAccount removes the authenticated user permanently.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}

	deleted, err := h.Auth.DeleteAccount(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.Message{Message: "Account " + deleted.Username + " deleted successfully"})
}

// ListUsers returns every user record. Routed behind the admin gate.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.Auth.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func respondError(c *gin.Context, err error) {
	if svcErr, ok := err.(*service.Error); ok {
		c.JSON(svcErr.Status, gin.H{"error": string(svcErr.Kind), "error_description": svcErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "error_description": "An unexpected error occurred."})
}
