package hotels

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hotelsight/backend/internal/middleware"
	"github.com/hotelsight/backend/pkg/response"
)

// ContextHotelID is the context key for the hotel ID once scope is enforced.
const ContextHotelID = "hotel_id"

// AccessChecker reports whether a user may see a hotel (membership or
// super-admin policy).
type AccessChecker interface {
	HasAccess(ctx context.Context, hotelID, userID uuid.UUID) (bool, error)
}

// RequireHotelAccess guards /hotels/:id subtrees: the caller must be a member
// of the hotel (or a super-admin) or the request stops with 403. Call after
// JWT. Sets ContextHotelID for downstream handlers.
func RequireHotelAccess(access AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		hotelID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid hotel id")
			c.Abort()
			return
		}
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		ok, err := access.HasAccess(c.Request.Context(), hotelID, userID)
		if err != nil {
			response.Internal(c, "failed to check hotel access")
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c, "not authorized for this hotel")
			c.Abort()
			return
		}
		c.Set(ContextHotelID, hotelID)
		c.Next()
	}
}
