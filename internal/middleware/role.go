package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hotelsight/backend/pkg/response"
)

// RoleLookup re-resolves a user's platform role from the database. The JWT
// role claim is never consulted here: a stale or forged claim must not open
// privileged endpoints.
type RoleLookup interface {
	IsSuperAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireSuperAdmin returns a middleware admitting only super-admins.
// Call after JWT. Responds 403 (not 401) on insufficient privilege so clients
// can route "signed in but not allowed" to the dashboard instead of sign-in.
func RequireSuperAdmin(roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, ok := c.Get(ContextUserID)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		userID, _ := userVal.(uuid.UUID)
		isSuper, err := roles.IsSuperAdmin(c.Request.Context(), userID)
		if err != nil {
			response.Internal(c, "failed to resolve role")
			c.Abort()
			return
		}
		if !isSuper {
			response.Forbidden(c, "super admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
