package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/auth"
	"github.com/phishguard/awareness-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService auth.Service
	validator   *utils.Validator
}

func NewAuthHandler(authService auth.Service, validator *utils.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		validator:   validator,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handleServiceError(c, err)
		return
	}

	session, err := h.authService.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: err.Error(),
			})
			return
		}
		h.LogError(c, err, "Sign-in failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Logout revokes the presented token. Always succeeds for the client.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.SignOut(c.Request.Context(), requestToken(c)); err != nil {
		h.LogError(c, err, "Sign-out revocation failed")
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Signed out",
	})
}

// GetSession reports the current auth state. Anonymous callers get a
// null session, not an error, so clients can poll it freely.
func (h *AuthHandler) GetSession(c *gin.Context) {
	session, err := h.authService.GetSession(c.Request.Context(), requestToken(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// RefreshSession rotates the presented token.
func (h *AuthHandler) RefreshSession(c *gin.Context) {
	session, err := h.authService.RefreshSession(c.Request.Context(), requestToken(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: err.Error(),
		})
		return
	}
	if session == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message:  "Not signed in",
			Redirect: "/login",
		})
		return
	}
	c.JSON(http.StatusOK, session)
}

func requestToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
