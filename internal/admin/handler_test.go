package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	hotels      map[uuid.UUID]*models.Hotel
	memberships map[uuid.UUID]*models.Membership
	createErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hotels:      map[uuid.UUID]*models.Hotel{},
		memberships: map[uuid.UUID]*models.Membership{},
	}
}

func (f *fakeStore) CreateHotel(ctx context.Context, name, location, description string) (*models.Hotel, error) {
	h := &models.Hotel{ID: uuid.New(), Name: name, Location: location, Description: description}
	f.hotels[h.ID] = h
	return h, nil
}

func (f *fakeStore) DeleteHotel(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.hotels[id]; !ok {
		return false, nil
	}
	delete(f.hotels, id)
	return true, nil
}

func (f *fakeStore) ListHotels(ctx context.Context) ([]HotelRow, error) {
	return []HotelRow{}, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]UserRow, error) {
	return []UserRow{}, nil
}

func (f *fakeStore) CreateUserWithMembership(ctx context.Context, email, passwordHash, fullName string, hotelID uuid.UUID, role string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.User{ID: uuid.New(), Email: email, FullName: fullName, Role: models.RoleStandard}, nil
}

func (f *fakeStore) AssignMembership(ctx context.Context, userID, hotelID uuid.UUID, role string) (*models.Membership, error) {
	m := &models.Membership{ID: uuid.New(), UserID: userID, HotelID: hotelID, Role: role}
	f.memberships[m.ID] = m
	return m, nil
}

func (f *fakeStore) RemoveMembership(ctx context.Context, membershipID uuid.UUID) (bool, error) {
	if _, ok := f.memberships[membershipID]; !ok {
		return false, nil
	}
	delete(f.memberships, membershipID)
	return true, nil
}

func (f *fakeStore) GetOverview(ctx context.Context) (*Overview, error) {
	return &Overview{Hotels: len(f.hotels)}, nil
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/hotels", h.CreateHotel)
	r.DELETE("/admin/hotels/:id", h.DeleteHotel)
	r.POST("/admin/users", h.CreateUser)
	r.POST("/admin/memberships", h.AssignMembership)
	r.DELETE("/admin/memberships/:id", h.RemoveMembership)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))
	return w
}

func TestCreateHotel(t *testing.T) {
	store := newFakeStore()
	r := newRouter(NewHandler(store, zap.NewNop()))

	w := postJSON(t, r, "/admin/hotels", CreateHotelRequest{Name: "Grand Plaza", Location: "Lisbon"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.hotels, 1)
}

func TestCreateHotelValidation(t *testing.T) {
	r := newRouter(NewHandler(newFakeStore(), zap.NewNop()))

	w := postJSON(t, r, "/admin/hotels", CreateHotelRequest{Name: "G"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteHotelNotFound(t *testing.T) {
	r := newRouter(NewHandler(newFakeStore(), zap.NewNop()))

	req := httptest.NewRequest(http.MethodDelete, "/admin/hotels/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteHotel(t *testing.T) {
	store := newFakeStore()
	h := &models.Hotel{ID: uuid.New()}
	store.hotels[h.ID] = h
	r := newRouter(NewHandler(store, zap.NewNop()))

	req := httptest.NewRequest(http.MethodDelete, "/admin/hotels/"+h.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.hotels)
}

func TestCreateUserRejectsBadRole(t *testing.T) {
	r := newRouter(NewHandler(newFakeStore(), zap.NewNop()))

	w := postJSON(t, r, "/admin/users", CreateUserRequest{
		Email: "a@example.com", Password: "longenough", FullName: "A B",
		HotelID: uuid.NewString(), Role: "owner",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "viewer, manager, admin")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`)
	r := newRouter(NewHandler(store, zap.NewNop()))

	w := postJSON(t, r, "/admin/users", CreateUserRequest{
		Email: "a@example.com", Password: "longenough", FullName: "A B",
		HotelID: uuid.NewString(), Role: models.MembershipRoleViewer,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUser(t *testing.T) {
	r := newRouter(NewHandler(newFakeStore(), zap.NewNop()))

	w := postJSON(t, r, "/admin/users", CreateUserRequest{
		Email: "a@example.com", Password: "longenough", FullName: "A B",
		HotelID: uuid.NewString(), Role: models.MembershipRoleManager,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAssignMembership(t *testing.T) {
	store := newFakeStore()
	r := newRouter(NewHandler(store, zap.NewNop()))

	w := postJSON(t, r, "/admin/memberships", AssignMembershipRequest{
		UserID: uuid.NewString(), HotelID: uuid.NewString(), Role: models.MembershipRoleAdmin,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.memberships, 1)
}

func TestRemoveMembershipNotFound(t *testing.T) {
	r := newRouter(NewHandler(newFakeStore(), zap.NewNop()))

	req := httptest.NewRequest(http.MethodDelete, "/admin/memberships/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
