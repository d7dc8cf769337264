package models

import (
	"time"

	"github.com/google/uuid"
)

// Hotel represents a tenant property; the unit of data partitioning.
type Hotel struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MembershipRole is the role a user holds within one hotel.
// Platform super-admins are not represented by membership rows; they get
// implicit visibility at the data-access layer.
const (
	MembershipRoleViewer  = "viewer"
	MembershipRoleManager = "manager"
	MembershipRoleAdmin   = "admin"
)

// ValidMembershipRole reports whether role is an assignable membership role.
func ValidMembershipRole(role string) bool {
	switch role {
	case MembershipRoleViewer, MembershipRoleManager, MembershipRoleAdmin:
		return true
	}
	return false
}

// Membership links a user to a hotel with a role.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	HotelID   uuid.UUID `json:"hotel_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// HotelWithRole is a hotel annotated with the caller's membership role.
// Super-admins see every hotel; their Role is empty.
type HotelWithRole struct {
	Hotel
	Role string `json:"role,omitempty"`
}
