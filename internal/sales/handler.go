package sales

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/response"
)

// Store is the data access surface the sales channel handlers need.
type Store interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.SalesChannel, error)
	ReplaceAll(ctx context.Context, hotelID uuid.UUID, channels []models.SalesChannel) ([]models.SalesChannel, error)
}

// Handler serves the booking channel distribution endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a sales channel handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /hotels/:id/sales-channels.
func (h *Handler) List(c *gin.Context) {
	hotelID := c.MustGet(hotels.ContextHotelID).(uuid.UUID)

	list, err := h.store.ListByHotel(c.Request.Context(), hotelID)
	if err != nil {
		h.logger.Error("failed to list sales channels", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to list sales channels")
		return
	}

	response.OK(c, list)
}

// ChannelInput is one channel's share of bookings.
type ChannelInput struct {
	ChannelName string  `json:"channel_name" binding:"required,min=1,max=100"`
	Percentage  float64 `json:"percentage" binding:"min=0,max=100"`
}

// ReplaceRequest is a full channel distribution for a hotel.
type ReplaceRequest struct {
	Channels []ChannelInput `json:"channels" binding:"required,min=1,dive"`
}

// Replace handles PUT /admin/hotels/:id/sales-channels. Registered behind
// RequireSuperAdmin. Shares must not sum to more than 100.
func (h *Handler) Replace(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel id")
		return
	}

	var req ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	seen := map[string]bool{}
	total := 0.0
	channels := make([]models.SalesChannel, 0, len(req.Channels))
	for _, in := range req.Channels {
		if seen[in.ChannelName] {
			response.BadRequest(c, fmt.Sprintf("duplicate channel %q", in.ChannelName))
			return
		}
		seen[in.ChannelName] = true
		total += in.Percentage
		channels = append(channels, models.SalesChannel{ChannelName: in.ChannelName, Percentage: in.Percentage})
	}
	if total > 100.0001 {
		response.BadRequest(c, "channel percentages must not exceed 100 in total")
		return
	}

	saved, err := h.store.ReplaceAll(c.Request.Context(), hotelID, channels)
	if err != nil {
		h.logger.Error("failed to replace sales channels", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to save sales channels")
		return
	}

	response.OK(c, saved)
}
