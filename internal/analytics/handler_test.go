package analytics

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

	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/middleware"
	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/queue"
)

type fakeMetrics struct{}

func (fakeMetrics) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.HotelMetric, error) {
	return nil, nil
}

type fakeSelections struct {
	sel    *hotels.Selection
	resets int
}

func (f *fakeSelections) Get(ctx context.Context, userID uuid.UUID) (*hotels.Selection, error) {
	return f.sel, nil
}

func (f *fakeSelections) Reset(ctx context.Context, userID uuid.UUID) error {
	f.sel = nil
	f.resets++
	return nil
}

type fakeAccess struct {
	denied bool
}

func (f fakeAccess) HasAccess(ctx context.Context, hotelID, userID uuid.UUID) (bool, error) {
	return !f.denied, nil
}

type fakeQueue struct {
	jobs []queue.AnalysisPayload
}

func (f *fakeQueue) EnqueueAnalysis(ctx context.Context, payload queue.AnalysisPayload) error {
	f.jobs = append(f.jobs, payload)
	return nil
}

type fakeResults struct {
	stored map[uuid.UUID]*Result
}

func (f *fakeResults) Put(ctx context.Context, r *Result) error {
	cp := *r
	f.stored[r.RequestID] = &cp
	return nil
}

func (f *fakeResults) Get(ctx context.Context, requestID uuid.UUID) (*Result, error) {
	return f.stored[requestID], nil
}

func newRouter(h *Handler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	r.POST("/analytics/query", h.Query)
	r.GET("/analytics/results/:id", h.GetResult)
	return r
}

func TestQueryPinsSelectionVersion(t *testing.T) {
	userID := uuid.New()
	hotelID := uuid.New()
	q := &fakeQueue{}
	results := &fakeResults{stored: map[uuid.UUID]*Result{}}
	h := NewHandler(fakeMetrics{}, &fakeSelections{sel: &hotels.Selection{HotelID: hotelID, Version: 9}}, fakeAccess{}, q, results, zap.NewNop())
	r := newRouter(h, userID)

	body, _ := json.Marshal(QueryRequest{Question: "how is revenue trending"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analytics/query", bytes.NewReader(body)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, hotelID, q.jobs[0].HotelID)
	assert.Equal(t, int64(9), q.jobs[0].SelectionVersion)

	stored := results.stored[q.jobs[0].RequestID]
	require.NotNil(t, stored, "a pending result exists before the job runs")
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, userID, stored.UserID)
}

func TestQueryWithoutSelection(t *testing.T) {
	h := NewHandler(fakeMetrics{}, &fakeSelections{sel: nil}, fakeAccess{}, &fakeQueue{},
		&fakeResults{stored: map[uuid.UUID]*Result{}}, zap.NewNop())
	r := newRouter(h, uuid.New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analytics/query", bytes.NewReader([]byte(`{}`))))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryAfterMembershipRevoked(t *testing.T) {
	// A stored selection can outlive the membership behind it. The query
	// endpoint must treat that pointer as no selection at all, never enqueue
	// work against the lost hotel, and drop the stale pointer.
	sels := &fakeSelections{sel: &hotels.Selection{HotelID: uuid.New(), Version: 3}}
	q := &fakeQueue{}
	results := &fakeResults{stored: map[uuid.UUID]*Result{}}
	h := NewHandler(fakeMetrics{}, sels, fakeAccess{denied: true}, q, results, zap.NewNop())
	r := newRouter(h, uuid.New())

	body, _ := json.Marshal(QueryRequest{Question: "how is revenue trending"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analytics/query", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no hotel selected")
	assert.Empty(t, q.jobs)
	assert.Empty(t, results.stored)
	assert.Equal(t, 1, sels.resets)
}

func TestGetResultOwnerOnly(t *testing.T) {
	owner := uuid.New()
	requestID := uuid.New()
	results := &fakeResults{stored: map[uuid.UUID]*Result{
		requestID: {RequestID: requestID, UserID: owner, Status: StatusReady, Insights: "fine"},
	}}
	h := NewHandler(fakeMetrics{}, &fakeSelections{}, fakeAccess{}, &fakeQueue{}, results, zap.NewNop())

	// Owner sees it.
	w := httptest.NewRecorder()
	newRouter(h, owner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/results/"+requestID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fine")

	// Anyone else gets 404, not 403: result ids must not leak existence.
	w = httptest.NewRecorder()
	newRouter(h, uuid.New()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/results/"+requestID.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetResultUnknownID(t *testing.T) {
	h := NewHandler(fakeMetrics{}, &fakeSelections{}, fakeAccess{}, &fakeQueue{},
		&fakeResults{stored: map[uuid.UUID]*Result{}}, zap.NewNop())

	w := httptest.NewRecorder()
	newRouter(h, uuid.New()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/results/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
