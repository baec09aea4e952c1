package models

import (
	"maps"
	"time"
)

// Session is one client session. Only the signed ID travels in the cookie; the values live in
// the session store.
type Session struct {
	ID     string
	Values map[string]any

	CreatedAt time.Time
	ExpiresAt time.Time // fixed at creation, requests do not extend it

	// Audit metadata of the request that created the session
	UserAgent string
	IPAddress string
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the session is expired at now. A session is expired from ExpiresAt
// onwards.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Clone returns a copy whose Values map can be modified independently.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Values = maps.Clone(s.Values)
	if clone.Values == nil {
		clone.Values = map[string]any{}
	}
	return &clone
}
