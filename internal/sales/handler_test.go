package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/models"
)

type fakeStore struct {
	replaced []models.SalesChannel
}

func (f *fakeStore) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.SalesChannel, error) {
	return f.replaced, nil
}

func (f *fakeStore) ReplaceAll(ctx context.Context, hotelID uuid.UUID, channels []models.SalesChannel) ([]models.SalesChannel, error) {
	out := make([]models.SalesChannel, len(channels))
	for i, ch := range channels {
		ch.ID = uuid.New()
		ch.HotelID = hotelID
		out[i] = ch
	}
	f.replaced = out
	return out, nil
}

func newReplaceRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/admin/hotels/:id/sales-channels", h.Replace)
	return r
}

func doReplace(t *testing.T, r *gin.Engine, req ReplaceRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
		"/admin/hotels/"+uuid.NewString()+"/sales-channels", bytes.NewReader(body)))
	return w
}

func TestReplaceStoresDistribution(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store, zap.NewNop())
	r := newReplaceRouter(h)

	w := doReplace(t, r, ReplaceRequest{Channels: []ChannelInput{
		{ChannelName: "Direct", Percentage: 40},
		{ChannelName: "OTA", Percentage: 35},
		{ChannelName: "Corporate", Percentage: 25},
	}})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.replaced, 3)
	assert.Equal(t, "Direct", store.replaced[0].ChannelName)
}

func TestReplaceRejectsDuplicateChannel(t *testing.T) {
	h := NewHandler(&fakeStore{}, zap.NewNop())
	r := newReplaceRouter(h)

	w := doReplace(t, r, ReplaceRequest{Channels: []ChannelInput{
		{ChannelName: "Direct", Percentage: 40},
		{ChannelName: "Direct", Percentage: 20},
	}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate channel")
}

func TestReplaceRejectsOverHundredTotal(t *testing.T) {
	h := NewHandler(&fakeStore{}, zap.NewNop())
	r := newReplaceRouter(h)

	w := doReplace(t, r, ReplaceRequest{Channels: []ChannelInput{
		{ChannelName: "Direct", Percentage: 70},
		{ChannelName: "OTA", Percentage: 50},
	}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceRejectsEmptyList(t *testing.T) {
	h := NewHandler(&fakeStore{}, zap.NewNop())
	r := newReplaceRouter(h)

	w := doReplace(t, r, ReplaceRequest{Channels: []ChannelInput{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceRejectsOutOfRangeShare(t *testing.T) {
	h := NewHandler(&fakeStore{}, zap.NewNop())
	r := newReplaceRouter(h)

	w := doReplace(t, r, ReplaceRequest{Channels: []ChannelInput{
		{ChannelName: "Direct", Percentage: 120},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
