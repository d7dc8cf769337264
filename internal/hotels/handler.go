package hotels

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/middleware"
	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/response"
)

// Store is the read surface the hotels handler needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error)
	VisibleHotels(ctx context.Context, userID uuid.UUID) ([]models.HotelWithRole, error)
	HasAccess(ctx context.Context, hotelID, userID uuid.UUID) (bool, error)
}

// Selections is the active-hotel selection surface.
type Selections interface {
	Get(ctx context.Context, userID uuid.UUID) (*Selection, error)
	Set(ctx context.Context, userID, hotelID uuid.UUID) (*Selection, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}

// SelectRequest is the body for PUT /hotels/selection.
type SelectRequest struct {
	HotelID string `json:"hotel_id" binding:"required,uuid"`
}

// SelectionResponse pairs the active hotel with its selection version.
type SelectionResponse struct {
	Hotel   *models.HotelWithRole `json:"hotel"`
	Version int64                 `json:"version"`
}

// Handler handles hotel scope HTTP endpoints.
type Handler struct {
	store      Store
	selections Selections
	logger     *zap.Logger
}

// NewHandler creates a hotels handler.
func NewHandler(store Store, selections Selections, logger *zap.Logger) *Handler {
	return &Handler{store: store, selections: selections, logger: logger}
}

// List handles GET /hotels. Returns the caller's visible hotel set. An empty
// set is a valid state (new or unprovisioned user), not an error.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	hotels, err := h.store.VisibleHotels(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list visible hotels", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load hotels")
		return
	}
	response.OK(c, hotels)
}

// Get handles GET /hotels/:id (behind RequireHotelAccess).
func (h *Handler) Get(c *gin.Context) {
	hotelID := c.MustGet(ContextHotelID).(uuid.UUID)
	hotel, err := h.store.GetByID(c.Request.Context(), hotelID)
	if err != nil {
		response.Internal(c, "failed to load hotel")
		return
	}
	if hotel == nil {
		response.NotFound(c, "hotel not found")
		return
	}
	response.OK(c, hotel)
}

// GetSelection handles GET /hotels/selection. Resolves the active hotel:
// a stored selection that is still visible wins; otherwise the first visible
// hotel becomes the selection; with no visible hotels the selection is null.
// A stored selection pointing at a hotel the user can no longer see is
// replaced, never returned.
func (h *Handler) GetSelection(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ctx := c.Request.Context()

	visible, err := h.store.VisibleHotels(ctx, userID)
	if err != nil {
		response.Internal(c, "failed to load hotels")
		return
	}

	sel, err := h.selections.Get(ctx, userID)
	if err != nil {
		response.Internal(c, "failed to load selection")
		return
	}

	if sel != nil {
		if hotel := findHotel(visible, sel.HotelID); hotel != nil {
			response.OK(c, SelectionResponse{Hotel: hotel, Version: sel.Version})
			return
		}
		// Stale pointer: membership was lost or the hotel is gone.
		if err := h.selections.Reset(ctx, userID); err != nil {
			h.logger.Warn("reset stale selection", zap.Error(err), zap.String("user_id", userID.String()))
		}
	}

	if len(visible) == 0 {
		response.OK(c, SelectionResponse{Hotel: nil, Version: 0})
		return
	}

	first := visible[0]
	stored, err := h.selections.Set(ctx, userID, first.ID)
	if err != nil {
		response.Internal(c, "failed to store selection")
		return
	}
	response.OK(c, SelectionResponse{Hotel: &first, Version: stored.Version})
}

// Select handles PUT /hotels/selection. Rejects any hotel outside the
// caller's visible set.
func (h *Handler) Select(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "hotel_id required")
		return
	}
	hotelID, err := uuid.Parse(req.HotelID)
	if err != nil {
		response.BadRequest(c, "invalid hotel_id")
		return
	}

	ctx := c.Request.Context()
	ok, err := h.store.HasAccess(ctx, hotelID, userID)
	if err != nil {
		response.Internal(c, "failed to check hotel access")
		return
	}
	if !ok {
		response.Forbidden(c, "hotel is not in your accessible set")
		return
	}

	sel, err := h.selections.Set(ctx, userID, hotelID)
	if err != nil {
		response.Internal(c, "failed to store selection")
		return
	}

	hotel, err := h.store.GetByID(ctx, hotelID)
	if err != nil || hotel == nil {
		response.Internal(c, "failed to load hotel")
		return
	}
	response.OK(c, SelectionResponse{Hotel: &models.HotelWithRole{Hotel: *hotel}, Version: sel.Version})
}

func findHotel(visible []models.HotelWithRole, id uuid.UUID) *models.HotelWithRole {
	for i := range visible {
		if visible[i].ID == id {
			return &visible[i]
		}
	}
	return nil
}
