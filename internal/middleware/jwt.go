package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hotelsight/backend/internal/auth"
	"github.com/hotelsight/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for the (advisory) role claim in gin context.
	ContextUserRole = "user_role"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// RevocationChecker reports whether a token id has been denylisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWT returns a middleware that validates the bearer token, rejects revoked
// tokens, and sets user claims in context. A 401 here means "not signed in";
// clients route it to the sign-in screen.
func JWT(jwtService *auth.JWTService, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				response.ServiceUnavailable(c, "session state unavailable")
				c.Abort()
				return
			}
			if isRevoked {
				response.Unauthorized(c, "session has been signed out")
				c.Abort()
				return
			}
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(auth.ContextClaims, claims)
		c.Next()
	}
}
