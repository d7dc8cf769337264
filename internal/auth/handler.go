package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/response"
	"github.com/hotelsight/backend/pkg/utils"
)

// ContextClaims is the gin context key under which the JWT middleware stores
// the validated *Claims.
const ContextClaims = "auth_claims"

// UserStore is the persistence surface the auth handler needs. It is an
// interface so handlers can be exercised against fakes.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, passwordHash, fullName string, role models.Role) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, passwordHash *string) (*models.User, error)
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateMeRequest is the body for PATCH /users/me.
type UpdateMeRequest struct {
	FullName        *string `json:"full_name"`
	NewPassword     *string `json:"new_password"`
	CurrentPassword string  `json:"current_password"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// SessionEnder tears down server-side session state at sign-out: token
// revocation and active-hotel selection reset.
type SessionEnder interface {
	End(ctx context.Context, userID uuid.UUID, jti string, expiresAt time.Time) error
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	store    UserStore
	jwt      *JWTService
	sessions SessionEnder
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store UserStore, jwt *JWTService, sessions SessionEnder, logger *zap.Logger) *Handler {
	return &Handler{store: store, jwt: jwt, sessions: sessions, logger: logger}
}

// Register handles POST /auth/register. New accounts always get the standard
// role; super-admins are provisioned out of band.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if _, err := h.store.GetByEmail(c.Request.Context(), email); err == nil {
		response.Conflict(c, "email already registered")
		return
	} else if !errors.Is(err, ErrNotFound) {
		response.Internal(c, "failed to check existing account")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.store.Create(c.Request.Context(), email, hash, req.FullName, models.RoleStandard)
	if err != nil {
		// Concurrent registration can slip past the lookup above and hit the
		// unique constraint instead.
		if strings.Contains(err.Error(), "duplicate key") {
			response.Conflict(c, "email already registered")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.store.GetByEmail(c.Request.Context(), utils.NormalizeEmail(req.Email))
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// Logout handles POST /auth/logout. Revokes the presented token and resets
// the caller's active-hotel selection so nothing from this session survives.
func (h *Handler) Logout(c *gin.Context) {
	claims := c.MustGet(ContextClaims).(*Claims)
	if err := h.sessions.End(c.Request.Context(), claims.UserID, claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Error("end session", zap.Error(err), zap.String("user_id", claims.UserID.String()))
		response.Internal(c, "failed to sign out")
		return
	}
	response.NoContent(c)
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	claims := c.MustGet(ContextClaims).(*Claims)
	user, err := h.store.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.NotFound(c, "account no longer exists")
		return
	}
	response.OK(c, user.ToPublic())
}

// UpdateMe handles PATCH /users/me (settings screen).
func (h *Handler) UpdateMe(c *gin.Context) {
	claims := c.MustGet(ContextClaims).(*Claims)
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.FullName == nil && req.NewPassword == nil {
		response.BadRequest(c, "nothing to update")
		return
	}

	var passwordHash *string
	if req.NewPassword != nil {
		if len(*req.NewPassword) < 6 {
			response.BadRequest(c, "new password must be at least 6 characters")
			return
		}
		user, err := h.store.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.NotFound(c, "account no longer exists")
			return
		}
		if !utils.CheckPassword(req.CurrentPassword, user.Password) {
			response.Unauthorized(c, "current password is incorrect")
			return
		}
		hash, err := utils.HashPassword(*req.NewPassword)
		if err != nil {
			response.Internal(c, "failed to hash password")
			return
		}
		passwordHash = &hash
	}

	updated, err := h.store.UpdateProfile(c.Request.Context(), claims.UserID, req.FullName, passwordHash)
	if err != nil {
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, updated.ToPublic())
}
