package hotels

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelsight/backend/internal/models"
)

// Repository handles hotel and membership reads. All privileged writes live
// in the admin package.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a hotels repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a hotel by ID, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	const q = `SELECT id, name, location, COALESCE(description, ''), created_at FROM hotels WHERE id = $1`
	var h models.Hotel
	err := r.pool.QueryRow(ctx, q, id).Scan(&h.ID, &h.Name, &h.Location, &h.Description, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// VisibleHotels returns the hotel set the user may access: the membership
// join for standard users, every hotel for super-admins. Super-admin
// visibility is a data-access-layer policy, not a membership row.
func (r *Repository) VisibleHotels(ctx context.Context, userID uuid.UUID) ([]models.HotelWithRole, error) {
	isSuper, err := r.isSuperAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}

	var rows pgx.Rows
	if isSuper {
		const q = `SELECT h.id, h.name, h.location, COALESCE(h.description, ''), h.created_at, '' AS role
			FROM hotels h ORDER BY h.created_at, h.name`
		rows, err = r.pool.Query(ctx, q)
	} else {
		const q = `SELECT h.id, h.name, h.location, COALESCE(h.description, ''), h.created_at, uh.role
			FROM hotels h
			INNER JOIN user_hotels uh ON uh.hotel_id = h.id
			WHERE uh.user_id = $1
			ORDER BY uh.created_at, h.name`
		rows, err = r.pool.Query(ctx, q, userID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.HotelWithRole{}
	for rows.Next() {
		var h models.HotelWithRole
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Description, &h.CreatedAt, &h.Role); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// HasAccess reports whether the user may see the hotel: a membership row
// exists or the user is a super-admin.
func (r *Repository) HasAccess(ctx context.Context, hotelID, userID uuid.UUID) (bool, error) {
	const q = `SELECT
		EXISTS (SELECT 1 FROM user_hotels WHERE hotel_id = $1 AND user_id = $2)
		OR EXISTS (SELECT 1 FROM users WHERE id = $2 AND role = 'super_admin')`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, hotelID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *Repository) isSuperAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	const q = `SELECT role = 'super_admin' FROM users WHERE id = $1`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID).Scan(&ok)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
