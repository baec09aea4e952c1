// Package session resolves the sessionId cookie into a per-request handle and persists changes
// to the configured store once per response.
package session

import (
	"context"
	"crypto/rand"
	"maps"
	"sync"

	"github.com/wolfeidau/reservations/internal/models"
)

type contextKey struct{}

// Session is the request's view of one session entry. It is safe for concurrent use by the
// goroutines serving a single request.
type Session struct {
	mu sync.Mutex

	entry    *models.Session
	isNew    bool
	modified bool

	// staleID is an identifier whose stored entry must be deleted on commit.
	staleID   string
	destroyed bool
}

func newSession() *Session {
	return &Session{
		entry: &models.Session{ID: rand.Text(), Values: map[string]any{}},
		isNew: true,
	}
}

func loadedSession(entry *models.Session) *Session {
	return &Session{entry: entry}
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entry.Values[key]
	return v, ok
}

// GetString returns the value under key when it is a string, otherwise "".
func (s *Session) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// Set stores value under key and marks the session modified.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry.Values[key] = value
	s.modified = true
}

// Delete removes key. Removing an absent key does not modify the session.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entry.Values[key]; ok {
		delete(s.entry.Values, key)
		s.modified = true
	}
}

// Values returns a copy of all values.
func (s *Session) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.entry.Values)
}

// IsNew reports whether the session has not been stored yet.
func (s *Session) IsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNew
}

// IsModified reports whether values changed during this request.
func (s *Session) IsModified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

// Regenerate moves the values to a fresh identifier. The previous entry is deleted on commit
// and a new cookie is issued.
func (s *Session) Regenerate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isNew && s.staleID == "" {
		s.staleID = s.entry.ID
	}
	s.entry = &models.Session{ID: rand.Text(), Values: s.entry.Values}
	s.isNew = true
	s.modified = true
}

// Destroy discards the session. Its entry is deleted and the cookie cleared on commit. Values
// set afterwards start a new session.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isNew && s.staleID == "" {
		s.staleID = s.entry.ID
	}
	s.entry = &models.Session{ID: rand.Text(), Values: map[string]any{}}
	s.isNew = true
	s.modified = false
	s.destroyed = true
}

// FromContext returns the session attached by Gate.Middleware, or nil outside the gate.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}
