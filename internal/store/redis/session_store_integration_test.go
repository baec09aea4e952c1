//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

func setupRedisContainer(t *testing.T, ctx context.Context) (*SessionStore, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:8-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewClient(ctx, Config{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)

	cleanup := func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}

	return NewSessionStore(client), cleanup
}

func TestIntegration_SessionStore(t *testing.T) {
	ctx := context.Background()
	st, cleanup := setupRedisContainer(t, ctx)
	defer cleanup()

	t.Run("save get delete", func(t *testing.T) {
		sess := &models.Session{
			ID:        "abc",
			Values:    map[string]any{"userId": "u-1"},
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
			UserAgent: "test-agent",
		}
		require.NoError(t, st.Save(ctx, sess))

		got, err := st.Get(ctx, "abc")
		require.NoError(t, err)
		require.Equal(t, "u-1", got.Values["userId"])
		require.Equal(t, "test-agent", got.UserAgent)

		ttl, err := st.client.TTL(ctx, st.key("abc")).Result()
		require.NoError(t, err)
		require.Greater(t, ttl, 59*time.Minute)

		require.NoError(t, st.Delete(ctx, "abc"))
		_, err = st.Get(ctx, "abc")
		require.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("expired save deletes", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, &models.Session{
			ID:        "gone",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		require.NoError(t, st.Save(ctx, &models.Session{
			ID:        "gone",
			ExpiresAt: time.Now().Add(-time.Second),
		}))

		_, err := st.Get(ctx, "gone")
		require.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, st.Ping(ctx))
	})
}
