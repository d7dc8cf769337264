package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/middleware"
	"github.com/hotelsight/backend/internal/models"
)

type fakeStore struct {
	methods []models.BillingMethod
	created *models.BillingMethod
}

func (f *fakeStore) ListMethods(ctx context.Context, userID uuid.UUID) ([]models.BillingMethod, error) {
	return f.methods, nil
}

func (f *fakeStore) CreateMethod(ctx context.Context, m models.BillingMethod) (*models.BillingMethod, error) {
	m.ID = uuid.New()
	m.IsDefault = len(f.methods) == 0
	f.created = &m
	f.methods = append(f.methods, m)
	return &m, nil
}

func (f *fakeStore) DeleteMethod(ctx context.Context, userID, methodID uuid.UUID) error {
	for i, m := range f.methods {
		if m.ID == methodID {
			f.methods = append(f.methods[:i], f.methods[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) SetDefault(ctx context.Context, userID, methodID uuid.UUID) (*models.BillingMethod, error) {
	for i := range f.methods {
		f.methods[i].IsDefault = f.methods[i].ID == methodID
		if f.methods[i].IsDefault {
			return &f.methods[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListInvoices(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	return []models.Invoice{}, nil
}

func newRouter(h *Handler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	r.POST("/billing/methods", h.CreateMethod)
	r.DELETE("/billing/methods/:id", h.DeleteMethod)
	return r
}

func TestValidExpiry(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, validExpiry("08/26", now), "current month is still valid")
	assert.True(t, validExpiry("12/26", now))
	assert.True(t, validExpiry("01/30", now))
	assert.False(t, validExpiry("07/26", now), "last month is expired")
	assert.False(t, validExpiry("12/25", now))
	assert.False(t, validExpiry("13/27", now), "month 13 does not exist")
	assert.False(t, validExpiry("00/27", now))
	assert.False(t, validExpiry("8/26", now), "month must be two digits")
	assert.False(t, validExpiry("08-26", now))
	assert.False(t, validExpiry("", now))
}

func TestCreateMethodStoresDisplayFieldsOnly(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store, zap.NewNop())
	r := newRouter(h, uuid.New())

	payload := map[string]string{
		"card_holder_name": "Jamie Guest",
		"card_last_four":   "4242",
		"card_expiry":      "12/30",
		"card_brand":       "visa",
		// A client must never send these; if it does they are simply not bound.
		"card_number": "4242424242424242",
		"cvv":         "123",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/billing/methods", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, store.created)
	assert.Equal(t, "4242", store.created.CardLastFour)
	assert.True(t, store.created.IsDefault, "first method becomes the default")
	assert.NotContains(t, w.Body.String(), "4242424242424242")
	assert.NotContains(t, w.Body.String(), "cvv")
}

func TestCreateMethodRejectsExpiredCard(t *testing.T) {
	h := NewHandler(&fakeStore{}, zap.NewNop())
	r := newRouter(h, uuid.New())

	body, _ := json.Marshal(CreateMethodRequest{
		CardHolderName: "Jamie Guest",
		CardLastFour:   "4242",
		CardExpiry:     "01/20",
	})
	req := httptest.NewRequest(http.MethodPost, "/billing/methods", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMethodRejectsNonNumericLastFour(t *testing.T) {
	h := NewHandler(&fakeStore{}, zap.NewNop())
	r := newRouter(h, uuid.New())

	body, _ := json.Marshal(CreateMethodRequest{
		CardHolderName: "Jamie Guest",
		CardLastFour:   "42ab",
		CardExpiry:     "12/30",
	})
	req := httptest.NewRequest(http.MethodPost, "/billing/methods", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMethodNotFound(t *testing.T) {
	h := NewHandler(&fakeStore{}, zap.NewNop())
	r := newRouter(h, uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/billing/methods/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
