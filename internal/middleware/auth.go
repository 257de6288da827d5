package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/constants"
	apierrors "github.com/kzmshx/taskhub/internal/errors"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/pkg/auth"
)

// RequireAuth verifies the bearer token and stores the caller's identity in
// the request context. The (id, role) pair is immutable for the rest of the
// operation.
func RequireAuth(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := tm.Verify(token)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyUserRole, claims.Role)
		c.Next()
	}
}

// GetIdentity retrieves the caller identity from context.
func GetIdentity(c *gin.Context) (authz.Identity, bool) {
	rawID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return authz.Identity{}, false
	}
	userID, ok := rawID.(uint64)
	if !ok {
		return authz.Identity{}, false
	}

	rawRole, exists := c.Get(constants.ContextKeyUserRole)
	if !exists {
		return authz.Identity{}, false
	}
	role, ok := rawRole.(models.Role)
	if !ok || !role.Valid() {
		return authz.Identity{}, false
	}

	return authz.Identity{UserID: userID, Role: role}, true
}
