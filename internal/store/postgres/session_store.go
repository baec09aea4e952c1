package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

// SessionStore implements store.SessionStore using PostgreSQL. Session values are stored as JSONB.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL-backed session store.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{
		pool: pool,
	}
}

// Save upserts a session row.
func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (
			session_id, data, created_at, expires_at, user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6::inet
		)
		ON CONFLICT (session_id) DO UPDATE SET
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at
	`

	// Convert empty IP address to nil for proper INET handling
	var ipAddress any
	if session.IPAddress != "" {
		ipAddress = session.IPAddress
	}

	values := session.Values
	if values == nil {
		values = map[string]any{}
	}

	_, err := s.pool.Exec(ctx, query,
		session.ID,
		values,
		session.CreatedAt,
		session.ExpiresAt,
		session.UserAgent,
		ipAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT
			session_id, data, created_at, expires_at,
			user_agent, COALESCE(host(ip_address), '')
		FROM sessions
		WHERE session_id = $1
	`

	var session models.Session
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.Values,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.UserAgent,
		&session.IPAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", mapPostgresError(err))
	}

	if session.IsExpired() {
		return nil, store.ErrSessionExpired
	}

	if session.Values == nil {
		session.Values = map[string]any{}
	}

	return &session, nil
}

// Delete deletes a session by ID.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", mapPostgresError(err))
	}

	return nil
}

// DeleteExpired deletes all expired sessions (cleanup job).
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", mapPostgresError(err))
	}

	count := int(result.RowsAffected())

	if count > 0 {
		log.Info().
			Int("count", count).
			Msg("Deleted expired sessions")
	}

	return count, nil
}

// Ping verifies database connectivity.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
