//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{
		ConnString:  connString,
		AutoMigrate: true,
	})
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestIntegration_Stores(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, runMigrations(ctx, pool))

		var count int
		err := pool.QueryRow(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	sessions := NewSessionStore(pool)
	users := NewUserStore(pool)
	reservations := NewReservationStore(pool)

	t.Run("session lifecycle", func(t *testing.T) {
		sess := &models.Session{
			ID:        "session-1",
			Values:    map[string]any{"userId": "abc", "visits": float64(2)},
			CreatedAt: time.Now().UTC(),
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
			UserAgent: "test-agent",
			IPAddress: "192.0.2.10",
		}
		require.NoError(t, sessions.Save(ctx, sess))

		got, err := sessions.Get(ctx, "session-1")
		require.NoError(t, err)
		require.Equal(t, "abc", got.Values["userId"])
		require.Equal(t, float64(2), got.Values["visits"])
		require.Equal(t, "192.0.2.10", got.IPAddress)

		sess.Values["visits"] = float64(3)
		require.NoError(t, sessions.Save(ctx, sess))
		got, err = sessions.Get(ctx, "session-1")
		require.NoError(t, err)
		require.Equal(t, float64(3), got.Values["visits"])

		require.NoError(t, sessions.Delete(ctx, "session-1"))
		_, err = sessions.Get(ctx, "session-1")
		require.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("expired sessions are purged", func(t *testing.T) {
		require.NoError(t, sessions.Save(ctx, &models.Session{
			ID:        "expired-1",
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}))

		_, err := sessions.Get(ctx, "expired-1")
		require.ErrorIs(t, err, store.ErrSessionExpired)

		count, err := sessions.DeleteExpired(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	userID := uuid.Must(uuid.NewV7())

	t.Run("user uniqueness ignores case", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, &models.User{
			ID:           userID,
			Name:         "Ada",
			Email:        "ada@example.com",
			PasswordHash: []byte("hash"),
			CreatedAt:    time.Now(),
		}))

		err := users.Create(ctx, &models.User{
			ID:           uuid.Must(uuid.NewV7()),
			Name:         "Other Ada",
			Email:        "ADA@example.com",
			PasswordHash: []byte("hash"),
			CreatedAt:    time.Now(),
		})
		require.ErrorIs(t, err, store.ErrUserAlreadyExists)

		got, err := users.GetByEmail(ctx, "Ada@Example.com")
		require.NoError(t, err)
		require.Equal(t, userID, got.ID)
	})

	t.Run("reservations by user", func(t *testing.T) {
		now := time.Now()
		for _, slot := range [][2]string{{"2026-11-02", "19:00"}, {"2026-11-01", "20:00"}} {
			require.NoError(t, reservations.Create(ctx, &models.Reservation{
				ID:        uuid.Must(uuid.NewV7()),
				UserID:    &userID,
				FirstName: "Ada",
				LastName:  "Lovelace",
				Email:     "ada@example.com",
				Phone:     "0123456789",
				Date:      slot[0],
				Time:      slot[1],
				CreatedAt: now,
				UpdatedAt: now,
			}))
		}

		list, err := reservations.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "2026-11-01", list[0].Date)
		require.True(t, list[0].OwnedBy(userID))

		list[0].Time = "21:30"
		list[0].UpdatedAt = time.Now()
		require.NoError(t, reservations.Update(ctx, list[0]))

		got, err := reservations.Get(ctx, list[0].ID)
		require.NoError(t, err)
		require.Equal(t, "21:30", got.Time)

		require.NoError(t, reservations.Delete(ctx, got.ID))
		require.ErrorIs(t, reservations.Delete(ctx, got.ID), store.ErrReservationNotFound)
	})
}
