package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelsight/backend/internal/models"
)

// Repository reads and writes monthly performance metrics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a metrics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByHotel returns a hotel's metrics ordered by month ascending, the order
// every chart consumes them in.
func (r *Repository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.HotelMetric, error) {
	const q = `SELECT id, hotel_id, month, revenue, expenses, profit, occupancy, created_at
		FROM hotel_metrics WHERE hotel_id = $1 ORDER BY month`
	rows, err := r.pool.Query(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.HotelMetric{}
	for rows.Next() {
		var m models.HotelMetric
		if err := rows.Scan(&m.ID, &m.HotelID, &m.Month, &m.Revenue, &m.Expenses,
			&m.Profit, &m.Occupancy, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Upsert writes one month's figures for a hotel. A row for the same month is
// replaced, so re-submitting corrected numbers is safe. Profit is always
// derived from revenue and expenses.
func (r *Repository) Upsert(ctx context.Context, hotelID uuid.UUID, month time.Time, revenue, expenses, occupancy float64) (*models.HotelMetric, error) {
	const q = `INSERT INTO hotel_metrics (hotel_id, month, revenue, expenses, profit, occupancy)
		VALUES ($1, $2, $3, $4, $3 - $4, $5)
		ON CONFLICT (hotel_id, month) DO UPDATE SET
			revenue = EXCLUDED.revenue,
			expenses = EXCLUDED.expenses,
			profit = EXCLUDED.profit,
			occupancy = EXCLUDED.occupancy
		RETURNING id, hotel_id, month, revenue, expenses, profit, occupancy, created_at`
	var m models.HotelMetric
	err := r.pool.QueryRow(ctx, q, hotelID, month, revenue, expenses, occupancy).
		Scan(&m.ID, &m.HotelID, &m.Month, &m.Revenue, &m.Expenses, &m.Profit, &m.Occupancy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
