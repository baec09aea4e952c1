package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is a table booking request.
type Reservation struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"userId,omitempty"` // set when booked from a logged in session
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Time      string     `json:"time"` // HH:MM, 24 hour
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// OwnedBy reports whether the reservation was made by userID.
func (r *Reservation) OwnedBy(userID uuid.UUID) bool {
	return r.UserID != nil && *r.UserID == userID
}

// Clone returns a deep copy.
func (r *Reservation) Clone() *Reservation {
	clone := *r
	if r.UserID != nil {
		id := *r.UserID
		clone.UserID = &id
	}
	return &clone
}
