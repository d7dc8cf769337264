package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelsight/backend/internal/models"
)

// Repository reads and writes booking channel distributions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sales channel repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByHotel returns a hotel's channels ordered by share descending.
func (r *Repository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.SalesChannel, error) {
	const q = `SELECT id, hotel_id, channel_name, percentage, created_at
		FROM sales_channels WHERE hotel_id = $1
		ORDER BY percentage DESC, channel_name`
	rows, err := r.pool.Query(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.SalesChannel{}
	for rows.Next() {
		var s models.SalesChannel
		if err := rows.Scan(&s.ID, &s.HotelID, &s.ChannelName, &s.Percentage, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ReplaceAll swaps a hotel's channel distribution for a new one in a single
// transaction, so readers never see a half-written mix.
func (r *Repository) ReplaceAll(ctx context.Context, hotelID uuid.UUID, channels []models.SalesChannel) ([]models.SalesChannel, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sales_channels WHERE hotel_id = $1`, hotelID); err != nil {
		return nil, err
	}

	const insert = `INSERT INTO sales_channels (hotel_id, channel_name, percentage)
		VALUES ($1, $2, $3)
		RETURNING id, hotel_id, channel_name, percentage, created_at`
	out := make([]models.SalesChannel, 0, len(channels))
	for _, ch := range channels {
		var s models.SalesChannel
		if err := tx.QueryRow(ctx, insert, hotelID, ch.ChannelName, ch.Percentage).
			Scan(&s.ID, &s.HotelID, &s.ChannelName, &s.Percentage, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
