package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/response"
	"github.com/hotelsight/backend/pkg/utils"
)

// Store is the data access surface the admin handlers need.
type Store interface {
	CreateHotel(ctx context.Context, name, location, description string) (*models.Hotel, error)
	DeleteHotel(ctx context.Context, id uuid.UUID) (bool, error)
	ListHotels(ctx context.Context) ([]HotelRow, error)
	ListUsers(ctx context.Context) ([]UserRow, error)
	CreateUserWithMembership(ctx context.Context, email, passwordHash, fullName string, hotelID uuid.UUID, role string) (*models.User, error)
	AssignMembership(ctx context.Context, userID, hotelID uuid.UUID, role string) (*models.Membership, error)
	RemoveMembership(ctx context.Context, membershipID uuid.UUID) (bool, error)
	GetOverview(ctx context.Context) (*Overview, error)
}

// Handler serves the privileged management endpoints. Route registration puts
// every method behind RequireSuperAdmin, so handlers assume the caller has
// already been re-checked against the database.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an admin handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// CreateHotelRequest is the payload for creating a hotel.
type CreateHotelRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Location    string `json:"location" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// CreateHotel handles POST /admin/hotels.
func (h *Handler) CreateHotel(c *gin.Context) {
	var req CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	hotel, err := h.store.CreateHotel(c.Request.Context(), req.Name, req.Location, req.Description)
	if err != nil {
		h.logger.Error("failed to create hotel", zap.Error(err))
		response.Internal(c, "failed to create hotel")
		return
	}

	response.Created(c, hotel)
}

// DeleteHotel handles DELETE /admin/hotels/:id.
func (h *Handler) DeleteHotel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel id")
		return
	}

	deleted, err := h.store.DeleteHotel(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete hotel", zap.String("hotel_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to delete hotel")
		return
	}
	if !deleted {
		response.NotFound(c, "hotel not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHotels handles GET /admin/hotels.
func (h *Handler) ListHotels(c *gin.Context) {
	hotels, err := h.store.ListHotels(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list hotels", zap.Error(err))
		response.Internal(c, "failed to list hotels")
		return
	}
	response.OK(c, hotels)
}

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, users)
}

// CreateUserRequest provisions an account together with its first membership.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=2,max=120"`
	HotelID  string `json:"hotel_id" binding:"required,uuid"`
	Role     string `json:"role" binding:"required"`
}

// CreateUser handles POST /admin/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !models.ValidMembershipRole(req.Role) {
		response.BadRequest(c, "role must be one of viewer, manager, admin")
		return
	}
	hotelID, _ := uuid.Parse(req.HotelID)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	user, err := h.store.CreateUserWithMembership(c.Request.Context(),
		utils.NormalizeEmail(req.Email), hash, req.FullName, hotelID, req.Role)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			response.Conflict(c, "a user with this email already exists")
			return
		}
		if strings.Contains(err.Error(), "foreign key") {
			response.NotFound(c, "hotel not found")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	response.Created(c, user.ToPublic())
}

// AssignMembershipRequest grants or updates a user's role in a hotel.
type AssignMembershipRequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	HotelID string `json:"hotel_id" binding:"required,uuid"`
	Role    string `json:"role" binding:"required"`
}

// AssignMembership handles POST /admin/memberships.
func (h *Handler) AssignMembership(c *gin.Context) {
	var req AssignMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !models.ValidMembershipRole(req.Role) {
		response.BadRequest(c, "role must be one of viewer, manager, admin")
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	hotelID, _ := uuid.Parse(req.HotelID)

	membership, err := h.store.AssignMembership(c.Request.Context(), userID, hotelID, req.Role)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			response.NotFound(c, "user or hotel not found")
			return
		}
		h.logger.Error("failed to assign membership", zap.Error(err))
		response.Internal(c, "failed to assign membership")
		return
	}

	response.Created(c, membership)
}

// RemoveMembership handles DELETE /admin/memberships/:id.
func (h *Handler) RemoveMembership(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}

	removed, err := h.store.RemoveMembership(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to remove membership", zap.Error(err))
		response.Internal(c, "failed to remove membership")
		return
	}
	if !removed {
		response.NotFound(c, "membership not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetOverview handles GET /admin/overview.
func (h *Handler) GetOverview(c *gin.Context) {
	overview, err := h.store.GetOverview(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load overview", zap.Error(err))
		response.Internal(c, "failed to load overview")
		return
	}
	response.OK(c, overview)
}
