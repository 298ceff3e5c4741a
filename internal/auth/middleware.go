package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/models"
)

const (
	// Context keys set for downstream handlers.
	ContextUserID  = "user_id"
	ContextRole    = "role"
	ContextSession = "session"

	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// RequireAuth resolves the bearer token and rejects anonymous callers
// with a login redirect hint.
func RequireAuth(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svc.GetSession(c.Request.Context(), bearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": err.Error(),
			})
			return
		}
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":  "Not signed in",
				"redirect": loginPath,
			})
			return
		}

		c.Set(ContextUserID, session.UserID)
		c.Set(ContextRole, session.Role)
		c.Set(ContextSession, session)
		c.Next()
	}
}

// RequireAdmin gates admin-only regions. Signed-in non-admins are pointed
// at the default authenticated view, not login.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":  "Not signed in",
				"redirect": loginPath,
			})
			return
		}
		if role.(models.UserRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message":  "Admin access required",
				"redirect": dashboardPath,
			})
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the session attached by RequireAuth.
func SessionFromContext(c *gin.Context) *Session {
	if v, exists := c.Get(ContextSession); exists {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
