package fnb

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

	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/models"
)

type fakeStore struct {
	from, to time.Time
	upserted *models.FBRevenue
}

func (f *fakeStore) ListByHotel(ctx context.Context, hotelID uuid.UUID, from, to time.Time) ([]models.FBRevenue, error) {
	f.from, f.to = from, to
	return []models.FBRevenue{}, nil
}

func (f *fakeStore) Upsert(ctx context.Context, entry models.FBRevenue) (*models.FBRevenue, error) {
	entry.ID = uuid.New()
	f.upserted = &entry
	return &entry, nil
}

func newListRouter(h *Handler, hotelID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/hotels/:id/fnb", func(c *gin.Context) {
		c.Set(hotels.ContextHotelID, hotelID)
		h.List(c)
	})
	r.PUT("/admin/hotels/:id/fnb", h.Upsert)
	return r
}

func TestListExplicitRange(t *testing.T) {
	store := &fakeStore{}
	hotelID := uuid.New()
	r := newListRouter(NewHandler(store, nil, zap.NewNop()), hotelID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/hotels/"+hotelID.String()+"/fnb?from=2026-03-01&to=2026-03-31", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), store.from)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), store.to)
}

func TestListDefaultsToThirtyDays(t *testing.T) {
	store := &fakeStore{}
	hotelID := uuid.New()
	r := newListRouter(NewHandler(store, nil, zap.NewNop()), hotelID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hotels/"+hotelID.String()+"/fnb", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultRange, store.to.Sub(store.from))
}

func TestListRejectsInvertedRange(t *testing.T) {
	hotelID := uuid.New()
	r := newListRouter(NewHandler(&fakeStore{}, nil, zap.NewNop()), hotelID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/hotels/"+hotelID.String()+"/fnb?from=2026-03-31&to=2026-03-01", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRejectsBadDate(t *testing.T) {
	hotelID := uuid.New()
	r := newListRouter(NewHandler(&fakeStore{}, nil, zap.NewNop()), hotelID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/hotels/"+hotelID.String()+"/fnb?from=03-01-2026", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpsertEntry(t *testing.T) {
	store := &fakeStore{}
	hotelID := uuid.New()
	r := newListRouter(NewHandler(store, nil, zap.NewNop()), hotelID)

	body, _ := json.Marshal(UpsertRequest{
		Date:              "2026-03-15",
		RestaurantRevenue: 1200,
		BarRevenue:        450,
		TotalCovers:       88,
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
		"/admin/hotels/"+hotelID.String()+"/fnb", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.upserted)
	assert.Equal(t, hotelID, store.upserted.HotelID)
	assert.Equal(t, 88, store.upserted.TotalCovers)
}
