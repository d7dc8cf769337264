package models

import (
	"time"

	"github.com/google/uuid"
)

// BillingMethod is a stored payment method reference. Only non-sensitive
// display fields are kept; the full card number and CVV never reach this
// service and have no column.
type BillingMethod struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	HotelID        *uuid.UUID `json:"hotel_id,omitempty"`
	CardHolderName string     `json:"card_holder_name"`
	CardLastFour   string     `json:"card_last_four"`
	CardExpiry     string     `json:"card_expiry"` // MM/YY
	CardBrand      string     `json:"card_brand,omitempty"`
	BillingAddress string     `json:"billing_address,omitempty"`
	BillingCity    string     `json:"billing_city,omitempty"`
	BillingCountry string     `json:"billing_country,omitempty"`
	PostalCode     string     `json:"billing_postal_code,omitempty"`
	IsDefault      bool       `json:"is_default"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// InvoiceStatus for subscription invoices.
const (
	InvoiceStatusPaid    = "paid"
	InvoiceStatusPending = "pending"
	InvoiceStatusOverdue = "overdue"
)

// Invoice is a subscription invoice line shown on the billing screen.
type Invoice struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	InvoiceDate time.Time `json:"invoice_date"`
	DueDate     time.Time `json:"due_date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
