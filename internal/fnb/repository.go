package fnb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelsight/backend/internal/models"
)

// Repository reads and writes daily food & beverage revenue.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an F&B repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const fbColumns = `id, hotel_id, revenue_date, restaurant_revenue, bar_revenue,
	room_service_revenue, event_catering_revenue, total_covers, created_at`

func scanRow(row interface {
	Scan(dest ...interface{}) error
}, f *models.FBRevenue) error {
	return row.Scan(&f.ID, &f.HotelID, &f.RevenueDate, &f.RestaurantRevenue, &f.BarRevenue,
		&f.RoomServiceRevenue, &f.EventCateringRevenue, &f.TotalCovers, &f.CreatedAt)
}

// ListByHotel returns a hotel's F&B rows inside [from, to], ordered by date.
func (r *Repository) ListByHotel(ctx context.Context, hotelID uuid.UUID, from, to time.Time) ([]models.FBRevenue, error) {
	q := `SELECT ` + fbColumns + `
		FROM fb_revenue
		WHERE hotel_id = $1 AND revenue_date >= $2 AND revenue_date <= $3
		ORDER BY revenue_date`
	rows, err := r.pool.Query(ctx, q, hotelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.FBRevenue{}
	for rows.Next() {
		var f models.FBRevenue
		if err := scanRow(rows, &f); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// Upsert writes one day's F&B figures, replacing any existing row for the date.
func (r *Repository) Upsert(ctx context.Context, entry models.FBRevenue) (*models.FBRevenue, error) {
	q := `INSERT INTO fb_revenue (hotel_id, revenue_date, restaurant_revenue, bar_revenue,
			room_service_revenue, event_catering_revenue, total_covers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (hotel_id, revenue_date) DO UPDATE SET
			restaurant_revenue = EXCLUDED.restaurant_revenue,
			bar_revenue = EXCLUDED.bar_revenue,
			room_service_revenue = EXCLUDED.room_service_revenue,
			event_catering_revenue = EXCLUDED.event_catering_revenue,
			total_covers = EXCLUDED.total_covers
		RETURNING ` + fbColumns
	var f models.FBRevenue
	err := scanRow(r.pool.QueryRow(ctx, q, entry.HotelID, entry.RevenueDate,
		entry.RestaurantRevenue, entry.BarRevenue, entry.RoomServiceRevenue,
		entry.EventCateringRevenue, entry.TotalCovers), &f)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
