package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/reservations/internal/store"
)

// SweepInterval is how often expired sessions are purged.
const SweepInterval = 15 * time.Minute

// Sweep purges expired entries from st every interval until ctx is done.
func Sweep(ctx context.Context, st store.SessionStore, interval time.Duration) {
	logger := zerolog.Ctx(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := st.DeleteExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to purge expired sessions")
				continue
			}
			if count > 0 {
				logger.Debug().Int("count", count).Msg("Purged expired sessions")
			}
		}
	}
}
