package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

const defaultPrefix = "session:"

// sessionRecord is the JSON value stored under each session key.
type sessionRecord struct {
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	UserAgent string         `json:"user_agent,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
}

// SessionStore implements store.SessionStore on Redis.
type SessionStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client goredis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: defaultPrefix,
	}
}

func (s *SessionStore) key(id string) string {
	return s.prefix + id
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	session := &models.Session{
		ID:        id,
		Values:    rec.Values,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
		UserAgent: rec.UserAgent,
		IPAddress: rec.IPAddress,
	}
	if session.Values == nil {
		session.Values = map[string]any{}
	}

	// key TTL and ExpiresAt can disagree by clock skew
	if session.IsExpired() {
		return nil, store.ErrSessionExpired
	}

	return session, nil
}

// Save writes the session with a TTL of its remaining lifetime. Sessions already past their
// expiry are deleted instead.
func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, session.ID)
	}

	data, err := json.Marshal(sessionRecord{
		Values:    session.Values,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		UserAgent: session.UserAgent,
		IPAddress: session.IPAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete removes the session key.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis evicts keys when their TTL lapses.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// Ping verifies Redis connectivity.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
