package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/utils"
)

type fakeUserStore struct {
	byEmail   map[string]*models.User
	byID      map[uuid.UUID]*models.User
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*models.User{}, byID: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserStore) add(email, password string, role models.Role) *models.User {
	hash, _ := utils.HashPassword(password)
	u := &models.User{ID: uuid.New(), Email: email, Password: hash, FullName: "Test User", Role: role}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, email, passwordHash, fullName string, role models.Role) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u := &models.User{ID: uuid.New(), Email: email, Password: passwordHash, FullName: fullName, Role: role}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, passwordHash *string) (*models.User, error) {
	u := f.byID[id]
	if fullName != nil {
		u.FullName = *fullName
	}
	if passwordHash != nil {
		u.Password = *passwordHash
	}
	return u, nil
}

type fakeSessions struct {
	ended []string // jtis
}

func (f *fakeSessions) End(ctx context.Context, userID uuid.UUID, jti string, expiresAt time.Time) error {
	f.ended = append(f.ended, jti)
	return nil
}

func newAuthRouter(h *Handler, claims *Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextClaims, claims)
		}
		h.Logout(c)
	})
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

func TestRegisterAlwaysStandardRole(t *testing.T) {
	store := newFakeUserStore()
	h := NewHandler(store, NewJWTService("s", 1), &fakeSessions{}, zap.NewNop())
	r := newAuthRouter(h, nil)

	w := postJSON(t, r, "/auth/register", RegisterRequest{
		Email: "New.User@Example.com", Password: "secret1", FullName: "New User",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	u := store.byEmail["new.user@example.com"]
	require.NotNil(t, u, "email is normalized before storage")
	assert.Equal(t, models.RoleStandard, u.Role)
	assert.NotContains(t, w.Body.String(), u.Password, "hash never leaves the server")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	store.add("taken@example.com", "secret1", models.RoleStandard)
	h := NewHandler(store, NewJWTService("s", 1), &fakeSessions{}, zap.NewNop())
	r := newAuthRouter(h, nil)

	w := postJSON(t, r, "/auth/register", RegisterRequest{
		Email: "taken@example.com", Password: "secret1", FullName: "Dup",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	// A racing registration can pass the lookup and lose to the unique
	// constraint; that is still a conflict, not a server error.
	store := newFakeUserStore()
	store.createErr = errors.New(`duplicate key value violates unique constraint "users_email_key"`)
	h := NewHandler(store, NewJWTService("s", 1), &fakeSessions{}, zap.NewNop())
	r := newAuthRouter(h, nil)

	w := postJSON(t, r, "/auth/register", RegisterRequest{
		Email: "raced@example.com", Password: "secret1", FullName: "Raced",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeUserStore()
	user := store.add("guest@example.com", "secret1", models.RoleStandard)
	svc := NewJWTService("s", 1)
	h := NewHandler(store, svc, &fakeSessions{}, zap.NewNop())
	r := newAuthRouter(h, nil)

	w := postJSON(t, r, "/auth/login", LoginRequest{Email: "guest@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	claims, err := svc.Validate(body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	store.add("guest@example.com", "secret1", models.RoleStandard)
	h := NewHandler(store, NewJWTService("s", 1), &fakeSessions{}, zap.NewNop())
	r := newAuthRouter(h, nil)

	w := postJSON(t, r, "/auth/login", LoginRequest{Email: "guest@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	h := NewHandler(newFakeUserStore(), NewJWTService("s", 1), &fakeSessions{}, zap.NewNop())
	r := newAuthRouter(h, nil)

	w := postJSON(t, r, "/auth/login", LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	sessions := &fakeSessions{}
	h := NewHandler(newFakeUserStore(), NewJWTService("s", 1), sessions, zap.NewNop())
	claims := &Claims{UserID: uuid.New()}
	claims.ID = "jti-123"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	r := newAuthRouter(h, claims)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"jti-123"}, sessions.ended)
}
