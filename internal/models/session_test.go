package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSession_ExpiredAt(t *testing.T) {
	expiresAt := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	sess := &Session{ExpiresAt: expiresAt}

	require.False(t, sess.ExpiredAt(expiresAt.Add(-time.Second)))
	require.True(t, sess.ExpiredAt(expiresAt))
	require.True(t, sess.ExpiredAt(expiresAt.Add(time.Second)))
}

func TestSession_IsExpired(t *testing.T) {
	require.False(t, (&Session{ExpiresAt: time.Now().Add(time.Hour)}).IsExpired())
	require.True(t, (&Session{ExpiresAt: time.Now().Add(-time.Hour)}).IsExpired())
}
