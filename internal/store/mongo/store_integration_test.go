//go:build integration

package mongo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func setupMongoContainer(t *testing.T, ctx context.Context) (*mongo.Database, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:8",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	db, err := Connect(ctx, Config{
		URI:      fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		Database: "restaurant_test",
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Client().Disconnect(ctx)
		_ = container.Terminate(ctx)
	}

	return db, cleanup
}

func TestIntegration_Stores(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupMongoContainer(t, ctx)
	defer cleanup()

	users := NewUserStore(db)
	reservations := NewReservationStore(db)

	userID := uuid.Must(uuid.NewV7())

	t.Run("users", func(t *testing.T) {
		u := &models.User{
			ID:           userID,
			Name:         "Ada",
			Email:        "ada@example.com",
			PasswordHash: []byte("hash"),
			CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, users.Create(ctx, u))

		dup := *u
		dup.ID = uuid.Must(uuid.NewV7())
		require.ErrorIs(t, users.Create(ctx, &dup), store.ErrUserAlreadyExists)

		got, err := users.GetByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		require.Equal(t, userID, got.ID)
		require.Equal(t, []byte("hash"), got.PasswordHash)

		_, err = users.Get(ctx, uuid.New())
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("reservations", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		late := &models.Reservation{
			ID: uuid.Must(uuid.NewV7()), UserID: &userID,
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "0123456789",
			Date: "2026-11-02", Time: "19:00", CreatedAt: now, UpdatedAt: now,
		}
		early := late.Clone()
		early.ID = uuid.Must(uuid.NewV7())
		early.Date = "2026-11-01"
		anonymous := late.Clone()
		anonymous.ID = uuid.Must(uuid.NewV7())
		anonymous.UserID = nil

		for _, r := range []*models.Reservation{late, early, anonymous} {
			require.NoError(t, reservations.Create(ctx, r))
		}

		list, err := reservations.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, early.ID, list[0].ID)

		got, err := reservations.Get(ctx, anonymous.ID)
		require.NoError(t, err)
		require.Nil(t, got.UserID)

		early.Time = "20:30"
		require.NoError(t, reservations.Update(ctx, early))
		got, err = reservations.Get(ctx, early.ID)
		require.NoError(t, err)
		require.Equal(t, "20:30", got.Time)

		require.NoError(t, reservations.Delete(ctx, early.ID))
		require.ErrorIs(t, reservations.Delete(ctx, early.ID), store.ErrReservationNotFound)
		require.ErrorIs(t, reservations.Update(ctx, early), store.ErrReservationNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, NewPinger(db).Ping(ctx))
	})
}
