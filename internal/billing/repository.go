package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelsight/backend/internal/models"
)

// ErrNotFound is returned when a billing method does not exist or belongs to
// another user.
var ErrNotFound = errors.New("billing method not found")

// Repository reads and writes stored payment method references and invoices.
// All queries are scoped to the owning user.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a billing repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const methodColumns = `id, user_id, hotel_id, card_holder_name, card_last_four, card_expiry,
	COALESCE(card_brand, ''), COALESCE(billing_address, ''), COALESCE(billing_city, ''),
	COALESCE(billing_country, ''), COALESCE(billing_postal_code, ''), is_default,
	created_at, updated_at`

func scanMethod(row interface {
	Scan(dest ...interface{}) error
}, m *models.BillingMethod) error {
	return row.Scan(&m.ID, &m.UserID, &m.HotelID, &m.CardHolderName, &m.CardLastFour,
		&m.CardExpiry, &m.CardBrand, &m.BillingAddress, &m.BillingCity,
		&m.BillingCountry, &m.PostalCode, &m.IsDefault, &m.CreatedAt, &m.UpdatedAt)
}

// ListMethods returns a user's payment methods, default first.
func (r *Repository) ListMethods(ctx context.Context, userID uuid.UUID) ([]models.BillingMethod, error) {
	q := `SELECT ` + methodColumns + ` FROM billing_methods
		WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.BillingMethod{}
	for rows.Next() {
		var m models.BillingMethod
		if err := scanMethod(rows, &m); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CreateMethod stores a payment method reference. The first method a user
// adds becomes the default automatically.
func (r *Repository) CreateMethod(ctx context.Context, m models.BillingMethod) (*models.BillingMethod, error) {
	q := `INSERT INTO billing_methods (user_id, hotel_id, card_holder_name, card_last_four,
			card_expiry, card_brand, billing_address, billing_city, billing_country,
			billing_postal_code, is_default)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			NULLIF($9, ''), NULLIF($10, ''),
			NOT EXISTS (SELECT 1 FROM billing_methods WHERE user_id = $1))
		RETURNING ` + methodColumns
	var out models.BillingMethod
	err := scanMethod(r.pool.QueryRow(ctx, q, m.UserID, m.HotelID, m.CardHolderName,
		m.CardLastFour, m.CardExpiry, m.CardBrand, m.BillingAddress, m.BillingCity,
		m.BillingCountry, m.PostalCode), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMethod removes a user's payment method.
func (r *Repository) DeleteMethod(ctx context.Context, userID, methodID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM billing_methods WHERE id = $1 AND user_id = $2`, methodID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefault marks one of the user's methods as default, clearing the flag on
// the others in the same transaction.
func (r *Repository) SetDefault(ctx context.Context, userID, methodID uuid.UUID) (*models.BillingMethod, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE billing_methods SET is_default = FALSE, updated_at = NOW()
		 WHERE user_id = $1 AND is_default`, userID); err != nil {
		return nil, err
	}

	q := `UPDATE billing_methods SET is_default = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + methodColumns
	var out models.BillingMethod
	if err := scanMethod(tx.QueryRow(ctx, q, methodID, userID), &out); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvoices returns a user's invoices, newest first.
func (r *Repository) ListInvoices(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	const q = `SELECT id, user_id, amount, status, invoice_date, due_date, description, created_at
		FROM invoices WHERE user_id = $1 ORDER BY invoice_date DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Invoice{}
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.Amount, &inv.Status,
			&inv.InvoiceDate, &inv.DueDate, &inv.Description, &inv.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}
