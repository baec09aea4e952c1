package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/reservations/internal/models"
)

// Sentinel errors for common error conditions
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
)

// SessionStore persists session entries keyed by session ID. Entries are independent, so
// implementations need no locking across sessions.
type SessionStore interface {
	// Get returns ErrSessionNotFound for unknown IDs and ErrSessionExpired for entries past
	// their expiry.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Save inserts or replaces the entry.
	Save(ctx context.Context, session *models.Session) error

	// Delete removes the entry. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired purges expired entries and returns how many were removed.
	DeleteExpired(ctx context.Context) (int, error)
}

// ReservationStore persists reservations.
type ReservationStore interface {
	Create(ctx context.Context, r *models.Reservation) error

	// Get returns ErrReservationNotFound when the ID is unknown.
	Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error)

	// Update replaces date and time of an existing reservation.
	Update(ctx context.Context, r *models.Reservation) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser returns a user's reservations ordered by date and time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Reservation, error)
}

// UserStore persists accounts. Emails are unique and compared case-insensitively; callers
// normalize them to lower case.
type UserStore interface {
	// Create returns ErrUserAlreadyExists when the email is taken.
	Create(ctx context.Context, u *models.User) error

	Get(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
