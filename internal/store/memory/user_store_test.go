package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

func TestMemoryUserStore(t *testing.T) {
	st := NewUserStore()
	ctx := context.Background()

	u := &models.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: []byte("hash"),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, st.Create(ctx, u))

	t.Run("duplicate email", func(t *testing.T) {
		dup := *u
		dup.ID = uuid.Must(uuid.NewV7())
		require.ErrorIs(t, st.Create(ctx, &dup), store.ErrUserAlreadyExists)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := st.Get(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := st.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, []byte("hash"), got.PasswordHash)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := st.Get(ctx, uuid.New())
		require.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = st.GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
