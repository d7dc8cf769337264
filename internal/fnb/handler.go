package fnb

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/response"
)

// Store is the data access surface the F&B handlers need.
type Store interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID, from, to time.Time) ([]models.FBRevenue, error)
	Upsert(ctx context.Context, entry models.FBRevenue) (*models.FBRevenue, error)
}

// Broadcaster pushes dashboard refresh events to connected clients.
type Broadcaster interface {
	BroadcastToHotelAndPublish(hotelID uuid.UUID, event string, payload interface{})
}

// Handler serves the food & beverage revenue endpoints.
type Handler struct {
	store  Store
	hub    Broadcaster
	logger *zap.Logger
}

// NewHandler creates an F&B handler. hub may be nil in tests.
func NewHandler(store Store, hub Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{store: store, hub: hub, logger: logger}
}

const dateLayout = "2006-01-02"

// defaultRange is how far back the F&B chart reaches when the client sends
// no explicit window.
const defaultRange = 30 * 24 * time.Hour

// List handles GET /hotels/:id/fnb?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Without query params it returns the last 30 days.
func (h *Handler) List(c *gin.Context) {
	hotelID := c.MustGet(hotels.ContextHotelID).(uuid.UUID)

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.Add(-defaultRange)
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(dateLayout, v); err != nil {
			response.BadRequest(c, "from must be in YYYY-MM-DD format")
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(dateLayout, v); err != nil {
			response.BadRequest(c, "to must be in YYYY-MM-DD format")
			return
		}
	}
	if to.Before(from) {
		response.BadRequest(c, "to must not be before from")
		return
	}

	list, err := h.store.ListByHotel(c.Request.Context(), hotelID, from, to)
	if err != nil {
		h.logger.Error("failed to list f&b revenue", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to list f&b revenue")
		return
	}

	response.OK(c, list)
}

// UpsertRequest is one day of F&B figures for a hotel.
type UpsertRequest struct {
	Date                 string  `json:"date" binding:"required"`
	RestaurantRevenue    float64 `json:"restaurant_revenue" binding:"min=0"`
	BarRevenue           float64 `json:"bar_revenue" binding:"min=0"`
	RoomServiceRevenue   float64 `json:"room_service_revenue" binding:"min=0"`
	EventCateringRevenue float64 `json:"event_catering_revenue" binding:"min=0"`
	TotalCovers          int     `json:"total_covers" binding:"min=0"`
}

// Upsert handles PUT /admin/hotels/:id/fnb. Registered behind RequireSuperAdmin.
func (h *Handler) Upsert(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel id")
		return
	}

	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		response.BadRequest(c, "date must be in YYYY-MM-DD format")
		return
	}

	entry, err := h.store.Upsert(c.Request.Context(), models.FBRevenue{
		HotelID:              hotelID,
		RevenueDate:          date,
		RestaurantRevenue:    req.RestaurantRevenue,
		BarRevenue:           req.BarRevenue,
		RoomServiceRevenue:   req.RoomServiceRevenue,
		EventCateringRevenue: req.EventCateringRevenue,
		TotalCovers:          req.TotalCovers,
	})
	if err != nil {
		h.logger.Error("failed to upsert f&b revenue", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to save f&b revenue")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToHotelAndPublish(hotelID, "fnb_updated", gin.H{
			"hotel_id": hotelID,
			"date":     entry.RevenueDate.Format(dateLayout),
		})
	}

	response.OK(c, entry)
}
