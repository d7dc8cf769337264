package comparisons

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelsight/backend/internal/models"
)

// Repository reads and writes before/after rollout comparisons.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a comparisons repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const comparisonColumns = `id, hotel_id, implementation_month, revenue_before, revenue_after,
	occupancy_before, occupancy_after, adr_before, adr_after,
	review_score_before, review_score_after, created_at`

func scanComparison(row interface {
	Scan(dest ...interface{}) error
}, cmp *models.HotelComparison) error {
	return row.Scan(&cmp.ID, &cmp.HotelID, &cmp.ImplementationMonth,
		&cmp.RevenueBefore, &cmp.RevenueAfter,
		&cmp.OccupancyBefore, &cmp.OccupancyAfter,
		&cmp.ADRBefore, &cmp.ADRAfter,
		&cmp.ReviewScoreBefore, &cmp.ReviewScoreAfter, &cmp.CreatedAt)
}

// ListByHotel returns a hotel's comparisons, newest rollout first.
func (r *Repository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.HotelComparison, error) {
	q := `SELECT ` + comparisonColumns + `
		FROM hotel_comparisons WHERE hotel_id = $1
		ORDER BY implementation_month DESC`
	rows, err := r.pool.Query(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.HotelComparison{}
	for rows.Next() {
		var cmp models.HotelComparison
		if err := scanComparison(rows, &cmp); err != nil {
			return nil, err
		}
		list = append(list, cmp)
	}
	return list, rows.Err()
}

// Create inserts a comparison snapshot.
func (r *Repository) Create(ctx context.Context, cmp models.HotelComparison) (*models.HotelComparison, error) {
	q := `INSERT INTO hotel_comparisons (hotel_id, implementation_month,
			revenue_before, revenue_after, occupancy_before, occupancy_after,
			adr_before, adr_after, review_score_before, review_score_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + comparisonColumns
	var out models.HotelComparison
	err := scanComparison(r.pool.QueryRow(ctx, q, cmp.HotelID, cmp.ImplementationMonth,
		cmp.RevenueBefore, cmp.RevenueAfter, cmp.OccupancyBefore, cmp.OccupancyAfter,
		cmp.ADRBefore, cmp.ADRAfter, cmp.ReviewScoreBefore, cmp.ReviewScoreAfter), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
