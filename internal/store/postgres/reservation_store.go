package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

const reservationColumns = `
	reservation_id, user_id, first_name, last_name, email, phone,
	date, time, created_at, updated_at
`

// ReservationStore implements store.ReservationStore using PostgreSQL.
type ReservationStore struct {
	pool *pgxpool.Pool
}

// NewReservationStore creates a new PostgreSQL-backed reservation store.
func NewReservationStore(pool *pgxpool.Pool) *ReservationStore {
	return &ReservationStore{pool: pool}
}

// Create inserts a reservation.
func (s *ReservationStore) Create(ctx context.Context, r *models.Reservation) error {
	query := `INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.UserID,
		r.FirstName,
		r.LastName,
		r.Email,
		r.Phone,
		r.Date,
		r.Time,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("reservation_id", r.ID.String()).
		Msg("Created reservation")

	return nil
}

// Get retrieves a reservation by ID.
func (s *ReservationStore) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = $1`

	r, err := scanReservation(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", mapPostgresError(err))
	}

	return r, nil
}

// Update replaces the date and time of a reservation.
func (s *ReservationStore) Update(ctx context.Context, r *models.Reservation) error {
	query := `
		UPDATE reservations
		SET date = $2, time = $3, updated_at = $4
		WHERE reservation_id = $1
	`

	result, err := s.pool.Exec(ctx, query, r.ID, r.Date, r.Time, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrReservationNotFound
	}

	return nil
}

// Delete removes a reservation.
func (s *ReservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM reservations WHERE reservation_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrReservationNotFound
	}

	return nil
}

// ListByUser returns a user's reservations ordered by date and time.
func (s *ReservationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY date, time, created_at`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	out := []*models.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", mapPostgresError(err))
	}

	return out, nil
}

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.FirstName,
		&r.LastName,
		&r.Email,
		&r.Phone,
		&r.Date,
		&r.Time,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
