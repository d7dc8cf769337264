package metrics

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

// Store is the data access surface the metrics handlers need.
type Store interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.HotelMetric, error)
	Upsert(ctx context.Context, hotelID uuid.UUID, month time.Time, revenue, expenses, occupancy float64) (*models.HotelMetric, error)
}

// Broadcaster pushes dashboard refresh events to connected clients.
type Broadcaster interface {
	BroadcastToHotelAndPublish(hotelID uuid.UUID, event string, payload interface{})
}

// Handler serves the monthly metrics endpoints.
type Handler struct {
	store  Store
	hub    Broadcaster
	logger *zap.Logger
}

// NewHandler creates a metrics handler. hub may be nil in tests.
func NewHandler(store Store, hub Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{store: store, hub: hub, logger: logger}
}

// List handles GET /hotels/:id/metrics. RequireHotelAccess has already
// resolved and authorized the hotel id.
func (h *Handler) List(c *gin.Context) {
	hotelID := c.MustGet(hotels.ContextHotelID).(uuid.UUID)

	list, err := h.store.ListByHotel(c.Request.Context(), hotelID)
	if err != nil {
		h.logger.Error("failed to list metrics", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to list metrics")
		return
	}

	response.OK(c, list)
}

// Summary is the headline card block: latest month's figures plus the change
// against the month before it.
type Summary struct {
	LatestMonth     *time.Time `json:"latest_month"`
	Revenue         float64    `json:"revenue"`
	Expenses        float64    `json:"expenses"`
	Profit          float64    `json:"profit"`
	Occupancy       float64    `json:"occupancy"`
	RevenueDelta    float64    `json:"revenue_delta"`
	ProfitDelta     float64    `json:"profit_delta"`
	OccupancyDelta  float64    `json:"occupancy_delta"`
	MonthsAvailable int        `json:"months_available"`
}

// GetSummary handles GET /hotels/:id/metrics/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	hotelID := c.MustGet(hotels.ContextHotelID).(uuid.UUID)

	list, err := h.store.ListByHotel(c.Request.Context(), hotelID)
	if err != nil {
		h.logger.Error("failed to load metrics", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to load metrics")
		return
	}

	response.OK(c, Summarize(list))
}

// Summarize reduces an ordered metric series to its headline summary.
// An empty series yields a zero summary with a nil latest month.
func Summarize(list []models.HotelMetric) Summary {
	s := Summary{MonthsAvailable: len(list)}
	if len(list) == 0 {
		return s
	}
	latest := list[len(list)-1]
	s.LatestMonth = &latest.Month
	s.Revenue = latest.Revenue
	s.Expenses = latest.Expenses
	s.Profit = latest.Profit
	s.Occupancy = latest.Occupancy
	if len(list) > 1 {
		prev := list[len(list)-2]
		s.RevenueDelta = latest.Revenue - prev.Revenue
		s.ProfitDelta = latest.Profit - prev.Profit
		s.OccupancyDelta = latest.Occupancy - prev.Occupancy
	}
	return s
}

// UpsertRequest is one month of figures for a hotel.
type UpsertRequest struct {
	Month     string  `json:"month" binding:"required"`
	Revenue   float64 `json:"revenue" binding:"min=0"`
	Expenses  float64 `json:"expenses" binding:"min=0"`
	Occupancy float64 `json:"occupancy" binding:"min=0,max=100"`
}

// Upsert handles PUT /admin/hotels/:id/metrics. Registered behind
// RequireSuperAdmin; the hotel id comes straight from the path.
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
	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		response.BadRequest(c, "month must be in YYYY-MM format")
		return
	}

	metric, err := h.store.Upsert(c.Request.Context(), hotelID, month, req.Revenue, req.Expenses, req.Occupancy)
	if err != nil {
		h.logger.Error("failed to upsert metric", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to save metric")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToHotelAndPublish(hotelID, "metrics_updated", gin.H{
			"hotel_id": hotelID,
			"month":    metric.Month.Format("2006-01"),
		})
	}

	response.OK(c, metric)
}
