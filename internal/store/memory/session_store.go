package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

// SessionStore implements store.SessionStore using in-memory storage.
// Sessions are lost on restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session // session_id -> Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, store.ErrSessionNotFound
	}

	if session.ExpiredAt(s.now()) {
		return nil, store.ErrSessionExpired
	}

	// Clone to avoid external modifications
	return session.Clone(), nil
}

// Save inserts or replaces a session.
func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session.Clone()
	return nil
}

// Delete deletes a session by ID.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// DeleteExpired deletes all expired sessions (cleanup job).
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for id, session := range s.sessions {
		if session.ExpiredAt(now) {
			delete(s.sessions, id)
			count++
		}
	}

	return count, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
