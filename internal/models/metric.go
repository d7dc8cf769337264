package models

import (
	"time"

	"github.com/google/uuid"
)

// HotelMetric is one month of financial and occupancy figures for a hotel.
// Month is the first day of the month.
type HotelMetric struct {
	ID        uuid.UUID `json:"id"`
	HotelID   uuid.UUID `json:"hotel_id"`
	Month     time.Time `json:"month"`
	Revenue   float64   `json:"revenue"`
	Expenses  float64   `json:"expenses"`
	Profit    float64   `json:"profit"`
	Occupancy float64   `json:"occupancy"` // percent, 0-100
	CreatedAt time.Time `json:"created_at"`
}

// FBRevenue is one day of food & beverage revenue for a hotel.
type FBRevenue struct {
	ID                   uuid.UUID `json:"id"`
	HotelID              uuid.UUID `json:"hotel_id"`
	RevenueDate          time.Time `json:"revenue_date"`
	RestaurantRevenue    float64   `json:"restaurant_revenue"`
	BarRevenue           float64   `json:"bar_revenue"`
	RoomServiceRevenue   float64   `json:"room_service_revenue"`
	EventCateringRevenue float64   `json:"event_catering_revenue"`
	TotalCovers          int       `json:"total_covers"`
	CreatedAt            time.Time `json:"created_at"`
}

// SalesChannel is the share of bookings coming through one channel.
type SalesChannel struct {
	ID          uuid.UUID `json:"id"`
	HotelID     uuid.UUID `json:"hotel_id"`
	ChannelName string    `json:"channel_name"`
	Percentage  float64   `json:"percentage"`
	CreatedAt   time.Time `json:"created_at"`
}

// HotelComparison is a before/after snapshot around a platform rollout month.
type HotelComparison struct {
	ID                  uuid.UUID `json:"id"`
	HotelID             uuid.UUID `json:"hotel_id"`
	ImplementationMonth time.Time `json:"implementation_month"`
	RevenueBefore       float64   `json:"revenue_before"`
	RevenueAfter        float64   `json:"revenue_after"`
	OccupancyBefore     float64   `json:"occupancy_before"`
	OccupancyAfter      float64   `json:"occupancy_after"`
	ADRBefore           float64   `json:"adr_before"`
	ADRAfter            float64   `json:"adr_after"`
	ReviewScoreBefore   float64   `json:"review_score_before"`
	ReviewScoreAfter    float64   `json:"review_score_after"`
	CreatedAt           time.Time `json:"created_at"`
}
