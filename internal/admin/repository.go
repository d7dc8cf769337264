package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelsight/backend/internal/models"
)

// Repository executes privileged writes. Every mutation here runs behind
// RequireSuperAdmin; multi-step writes are wrapped in a transaction so they
// are authorized and applied atomically.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateHotel inserts a new hotel.
func (r *Repository) CreateHotel(ctx context.Context, name, location, description string) (*models.Hotel, error) {
	const q = `INSERT INTO hotels (name, location, description)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, name, location, COALESCE(description, ''), created_at`
	var h models.Hotel
	err := r.pool.QueryRow(ctx, q, name, location, description).
		Scan(&h.ID, &h.Name, &h.Location, &h.Description, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHotel removes a hotel. Memberships, metrics, F&B rows, sales channels
// and comparisons cascade, so no user's visible set retains the hotel.
// Returns false when the hotel did not exist.
func (r *Repository) DeleteHotel(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListHotels returns all hotels with their member counts.
func (r *Repository) ListHotels(ctx context.Context) ([]HotelRow, error) {
	const q = `SELECT h.id, h.name, h.location, COALESCE(h.description, ''), h.created_at,
		COUNT(uh.id) AS members
		FROM hotels h
		LEFT JOIN user_hotels uh ON uh.hotel_id = h.id
		GROUP BY h.id
		ORDER BY h.name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []HotelRow{}
	for rows.Next() {
		var h HotelRow
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Description, &h.CreatedAt, &h.Members); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// HotelRow is a hotel with its membership count (admin hotel management).
type HotelRow struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Members     int       `json:"members"`
}

// UserRow is one user/membership pair for the admin user-management screen.
// Users with no memberships appear once with empty hotel fields.
type UserRow struct {
	UserID       uuid.UUID  `json:"user_id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	PlatformRole string     `json:"platform_role"`
	MembershipID *uuid.UUID `json:"membership_id,omitempty"`
	HotelID      *uuid.UUID `json:"hotel_id,omitempty"`
	HotelName    *string    `json:"hotel_name,omitempty"`
	HotelRole    *string    `json:"hotel_role,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListUsers returns all users joined with their hotel memberships.
func (r *Repository) ListUsers(ctx context.Context) ([]UserRow, error) {
	const q = `SELECT u.id, u.email, u.full_name, u.role,
		uh.id, uh.hotel_id, h.name, uh.role, u.created_at
		FROM users u
		LEFT JOIN user_hotels uh ON uh.user_id = u.id
		LEFT JOIN hotels h ON h.id = uh.hotel_id
		ORDER BY u.email, h.name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []UserRow{}
	for rows.Next() {
		var u UserRow
		if err := rows.Scan(&u.UserID, &u.Email, &u.FullName, &u.PlatformRole,
			&u.MembershipID, &u.HotelID, &u.HotelName, &u.HotelRole, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CreateUserWithMembership creates a user account and assigns it to a hotel
// in one transaction, so the admin "add user" flow cannot leave a half
// provisioned account.
func (r *Repository) CreateUserWithMembership(ctx context.Context, email, passwordHash, fullName string, hotelID uuid.UUID, role string) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertUser = `INSERT INTO users (email, password_hash, full_name, role)
		VALUES ($1, $2, $3, 'standard')
		RETURNING id, email, password_hash, full_name, role, created_at, updated_at`
	var u models.User
	if err := tx.QueryRow(ctx, insertUser, email, passwordHash, fullName).
		Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	const insertMembership = `INSERT INTO user_hotels (user_id, hotel_id, role) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, insertMembership, u.ID, hotelID, role); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

// AssignMembership grants a user a role in a hotel; an existing membership
// has its role replaced.
func (r *Repository) AssignMembership(ctx context.Context, userID, hotelID uuid.UUID, role string) (*models.Membership, error) {
	const q = `INSERT INTO user_hotels (user_id, hotel_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, hotel_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, user_id, hotel_id, role, created_at`
	var m models.Membership
	err := r.pool.QueryRow(ctx, q, userID, hotelID, role).
		Scan(&m.ID, &m.UserID, &m.HotelID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RemoveMembership deletes a membership row. Returns false when it did not exist.
func (r *Repository) RemoveMembership(ctx context.Context, membershipID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_hotels WHERE id = $1`, membershipID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Overview holds the admin dashboard counters.
type Overview struct {
	Hotels      int `json:"hotels"`
	Users       int `json:"users"`
	Memberships int `json:"memberships"`
	MetricRows  int `json:"metric_rows"`
}

// GetOverview returns platform-wide counts for the admin dashboard.
func (r *Repository) GetOverview(ctx context.Context) (*Overview, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM hotels),
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM user_hotels),
		(SELECT COUNT(*) FROM hotel_metrics)`
	var o Overview
	err := r.pool.QueryRow(ctx, q).Scan(&o.Hotels, &o.Users, &o.Memberships, &o.MetricRows)
	if errors.Is(err, pgx.ErrNoRows) {
		return &o, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
