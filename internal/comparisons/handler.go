package comparisons

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

// Store is the data access surface the comparison handlers need.
type Store interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.HotelComparison, error)
	Create(ctx context.Context, cmp models.HotelComparison) (*models.HotelComparison, error)
}

// Handler serves the before/after comparison endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a comparisons handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /hotels/:id/comparisons.
func (h *Handler) List(c *gin.Context) {
	hotelID := c.MustGet(hotels.ContextHotelID).(uuid.UUID)

	list, err := h.store.ListByHotel(c.Request.Context(), hotelID)
	if err != nil {
		h.logger.Error("failed to list comparisons", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to list comparisons")
		return
	}

	response.OK(c, list)
}

// CreateRequest is a before/after snapshot around a rollout month.
type CreateRequest struct {
	ImplementationMonth string  `json:"implementation_month" binding:"required"`
	RevenueBefore       float64 `json:"revenue_before" binding:"min=0"`
	RevenueAfter        float64 `json:"revenue_after" binding:"min=0"`
	OccupancyBefore     float64 `json:"occupancy_before" binding:"min=0,max=100"`
	OccupancyAfter      float64 `json:"occupancy_after" binding:"min=0,max=100"`
	ADRBefore           float64 `json:"adr_before" binding:"min=0"`
	ADRAfter            float64 `json:"adr_after" binding:"min=0"`
	ReviewScoreBefore   float64 `json:"review_score_before" binding:"min=0,max=10"`
	ReviewScoreAfter    float64 `json:"review_score_after" binding:"min=0,max=10"`
}

// Create handles POST /admin/hotels/:id/comparisons. Registered behind
// RequireSuperAdmin.
func (h *Handler) Create(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel id")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	month, err := time.Parse("2006-01", req.ImplementationMonth)
	if err != nil {
		response.BadRequest(c, "implementation_month must be in YYYY-MM format")
		return
	}

	cmp, err := h.store.Create(c.Request.Context(), models.HotelComparison{
		HotelID:             hotelID,
		ImplementationMonth: month,
		RevenueBefore:       req.RevenueBefore,
		RevenueAfter:        req.RevenueAfter,
		OccupancyBefore:     req.OccupancyBefore,
		OccupancyAfter:      req.OccupancyAfter,
		ADRBefore:           req.ADRBefore,
		ADRAfter:            req.ADRAfter,
		ReviewScoreBefore:   req.ReviewScoreBefore,
		ReviewScoreAfter:    req.ReviewScoreAfter,
	})
	if err != nil {
		h.logger.Error("failed to create comparison", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to save comparison")
		return
	}

	response.Created(c, cmp)
}
