package analytics

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/middleware"
	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/queue"
	"github.com/hotelsight/backend/pkg/response"
)

// MetricSource provides the metric series analysis runs over.
type MetricSource interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.HotelMetric, error)
}

// SelectionSource resolves the caller's active hotel selection.
type SelectionSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*hotels.Selection, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}

// AccessChecker reports whether a user can still see a hotel. The selection
// store is not invalidated when memberships change, so every consumer of a
// stored selection re-checks it against the live membership data.
type AccessChecker interface {
	HasAccess(ctx context.Context, hotelID, userID uuid.UUID) (bool, error)
}

// Enqueuer hands analysis jobs to the worker.
type Enqueuer interface {
	EnqueueAnalysis(ctx context.Context, payload queue.AnalysisPayload) error
}

// Results stores and fetches analysis results.
type Results interface {
	Put(ctx context.Context, r *Result) error
	Get(ctx context.Context, requestID uuid.UUID) (*Result, error)
}

// Handler serves the analytics endpoints.
type Handler struct {
	metrics    MetricSource
	selections SelectionSource
	access     AccessChecker
	jobs       Enqueuer
	results    Results
	logger     *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(metrics MetricSource, selections SelectionSource, access AccessChecker, jobs Enqueuer, results Results, logger *zap.Logger) *Handler {
	return &Handler{metrics: metrics, selections: selections, access: access, jobs: jobs, results: results, logger: logger}
}

// SummaryResponse aggregates a hotel's full metric history.
type SummaryResponse struct {
	Months       int     `json:"months"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	AvgOccupancy float64 `json:"avg_occupancy"`
	BestMonth    *string `json:"best_month"`
	Insights     string  `json:"insights"`
}

// GetSummary handles GET /hotels/:id/analytics. The synchronous counterpart
// of the queued analysis: aggregates plus the generated narrative.
func (h *Handler) GetSummary(c *gin.Context) {
	hotelID := c.MustGet(hotels.ContextHotelID).(uuid.UUID)

	list, err := h.metrics.ListByHotel(c.Request.Context(), hotelID)
	if err != nil {
		h.logger.Error("failed to load metrics", zap.String("hotel_id", hotelID.String()), zap.Error(err))
		response.Internal(c, "failed to load analytics")
		return
	}

	out := SummaryResponse{Months: len(list)}
	var best *models.HotelMetric
	for i := range list {
		m := &list[i]
		out.TotalRevenue += m.Revenue
		out.TotalProfit += m.Profit
		out.AvgOccupancy += m.Occupancy
		if best == nil || m.Revenue > best.Revenue {
			best = m
		}
	}
	if len(list) > 0 {
		out.AvgOccupancy /= float64(len(list))
		month := best.Month.Format("2006-01")
		out.BestMonth = &month
	}
	out.Insights = GenerateInsights("this hotel", list)

	response.OK(c, out)
}

// QueryRequest asks for an asynchronous analysis of the active hotel.
type QueryRequest struct {
	Question string `json:"question" binding:"max=500"`
}

// Query handles POST /analytics/query. The job is pinned to the caller's
// current selection version; if they switch hotels before the worker
// finishes, the result comes back stale instead of showing the wrong hotel.
func (h *Handler) Query(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sel, err := h.selections.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load selection", zap.Error(err))
		response.ServiceUnavailable(c, "selection state unavailable")
		return
	}
	if sel == nil {
		response.BadRequest(c, "no hotel selected")
		return
	}

	ok, err := h.access.HasAccess(c.Request.Context(), sel.HotelID, userID)
	if err != nil {
		h.logger.Error("failed to check hotel access", zap.Error(err))
		response.Internal(c, "failed to check hotel access")
		return
	}
	if !ok {
		// Membership was revoked after the selection was stored. Drop the
		// stale pointer the same way GetSelection does.
		if err := h.selections.Reset(c.Request.Context(), userID); err != nil {
			h.logger.Warn("reset stale selection", zap.Error(err), zap.String("user_id", userID.String()))
		}
		response.BadRequest(c, "no hotel selected")
		return
	}

	result := &Result{
		RequestID:        uuid.New(),
		UserID:           userID,
		HotelID:          sel.HotelID,
		SelectionVersion: sel.Version,
		Status:           StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.results.Put(c.Request.Context(), result); err != nil {
		h.logger.Error("failed to store pending result", zap.Error(err))
		response.Internal(c, "failed to start analysis")
		return
	}

	err = h.jobs.EnqueueAnalysis(c.Request.Context(), queue.AnalysisPayload{
		RequestID:        result.RequestID,
		HotelID:          sel.HotelID,
		UserID:           userID,
		SelectionVersion: sel.Version,
		Question:         req.Question,
	})
	if err != nil {
		h.logger.Error("failed to enqueue analysis", zap.Error(err))
		response.Internal(c, "failed to start analysis")
		return
	}

	response.Accepted(c, gin.H{"request_id": result.RequestID, "status": result.Status})
}

// GetResult handles GET /analytics/results/:id. Results are private to the
// user who requested them.
func (h *Handler) GetResult(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	result, err := h.results.Get(c.Request.Context(), requestID)
	if err != nil {
		h.logger.Error("failed to load result", zap.Error(err))
		response.Internal(c, "failed to load result")
		return
	}
	if result == nil || result.UserID != userID {
		response.NotFound(c, "result not found")
		return
	}

	response.OK(c, result)
}
