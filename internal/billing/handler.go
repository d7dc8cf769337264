package billing

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/middleware"
	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/response"
)

// Store is the data access surface the billing handlers need.
type Store interface {
	ListMethods(ctx context.Context, userID uuid.UUID) ([]models.BillingMethod, error)
	CreateMethod(ctx context.Context, m models.BillingMethod) (*models.BillingMethod, error)
	DeleteMethod(ctx context.Context, userID, methodID uuid.UUID) error
	SetDefault(ctx context.Context, userID, methodID uuid.UUID) (*models.BillingMethod, error)
	ListInvoices(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error)
}

// Handler serves the billing endpoints. Every operation is scoped to the
// authenticated user; there is no cross-user access even for admins.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a billing handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// ListMethods handles GET /billing/methods.
func (h *Handler) ListMethods(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	methods, err := h.store.ListMethods(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list billing methods", zap.Error(err))
		response.Internal(c, "failed to list billing methods")
		return
	}

	response.OK(c, methods)
}

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)

// validExpiry accepts MM/YY strings for the current month or later.
func validExpiry(expiry string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	year += 2000
	if year > now.Year() {
		return true
	}
	return year == now.Year() && month >= int(now.Month())
}

// CreateMethodRequest stores a card reference. The client sends only display
// fields; the card number and CVV go directly to the payment processor and
// are never accepted here.
type CreateMethodRequest struct {
	CardHolderName string `json:"card_holder_name" binding:"required,min=2,max=120"`
	CardLastFour   string `json:"card_last_four" binding:"required,len=4,numeric"`
	CardExpiry     string `json:"card_expiry" binding:"required"`
	CardBrand      string `json:"card_brand" binding:"max=40"`
	BillingAddress string `json:"billing_address" binding:"max=300"`
	BillingCity    string `json:"billing_city" binding:"max=120"`
	BillingCountry string `json:"billing_country" binding:"max=120"`
	PostalCode     string `json:"billing_postal_code" binding:"max=20"`
	HotelID        string `json:"hotel_id" binding:"omitempty,uuid"`
}

// CreateMethod handles POST /billing/methods.
func (h *Handler) CreateMethod(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !validExpiry(req.CardExpiry, time.Now()) {
		response.BadRequest(c, "card_expiry must be MM/YY and not in the past")
		return
	}

	method := models.BillingMethod{
		UserID:         userID,
		CardHolderName: req.CardHolderName,
		CardLastFour:   req.CardLastFour,
		CardExpiry:     req.CardExpiry,
		CardBrand:      req.CardBrand,
		BillingAddress: req.BillingAddress,
		BillingCity:    req.BillingCity,
		BillingCountry: req.BillingCountry,
		PostalCode:     req.PostalCode,
	}
	if req.HotelID != "" {
		id, _ := uuid.Parse(req.HotelID)
		method.HotelID = &id
	}

	saved, err := h.store.CreateMethod(c.Request.Context(), method)
	if err != nil {
		h.logger.Error("failed to create billing method", zap.Error(err))
		response.Internal(c, "failed to save billing method")
		return
	}

	response.Created(c, saved)
}

// DeleteMethod handles DELETE /billing/methods/:id.
func (h *Handler) DeleteMethod(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid billing method id")
		return
	}

	if err := h.store.DeleteMethod(c.Request.Context(), userID, methodID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "billing method not found")
			return
		}
		h.logger.Error("failed to delete billing method", zap.Error(err))
		response.Internal(c, "failed to delete billing method")
		return
	}

	c.Status(http.StatusNoContent)
}

// SetDefault handles POST /billing/methods/:id/default.
func (h *Handler) SetDefault(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid billing method id")
		return
	}

	method, err := h.store.SetDefault(c.Request.Context(), userID, methodID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "billing method not found")
			return
		}
		h.logger.Error("failed to set default billing method", zap.Error(err))
		response.Internal(c, "failed to update billing method")
		return
	}

	response.OK(c, method)
}

// ListInvoices handles GET /billing/invoices.
func (h *Handler) ListInvoices(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	invoices, err := h.store.ListInvoices(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		response.Internal(c, "failed to list invoices")
		return
	}

	response.OK(c, invoices)
}
