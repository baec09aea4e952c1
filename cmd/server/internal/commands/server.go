package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/reservations/internal/config"
	"github.com/wolfeidau/reservations/internal/fault"
	"github.com/wolfeidau/reservations/internal/logger"
	"github.com/wolfeidau/reservations/internal/recommend"
	"github.com/wolfeidau/reservations/internal/server"
	"github.com/wolfeidau/reservations/internal/session"
	"github.com/wolfeidau/reservations/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

type ServerCmd struct {
	config.Config `embed:""`
}

func (c *ServerCmd) Run(globals *Globals) error {
	cfg := &c.Config

	log := logger.Setup(!cfg.IsProduction())
	guard := fault.NewGuard(log, cfg.FailFast)
	defer guard.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().
		Str("version", globals.Version).
		Str("mode", string(cfg.Mode())).
		Str("store", cfg.StoreType).
		Str("session_store", cfg.SessionStoreType).
		Msg("Starting server")

	if cfg.UsesPlaceholderSecret() {
		log.Warn().Msg("SESSION_SECRET is not set, session cookies are signed with the placeholder secret")
	}

	if cfg.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.Init(ctx, "reservations-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	catalog, err := recommend.Load(cfg.MenuCatalog)
	if err != nil {
		return fmt.Errorf("failed to load menu catalog: %w", err)
	}
	log.Info().Int("dishes", catalog.Len()).Msg("Menu catalog loaded")

	srv := server.New(cfg, log, stores, catalog)
	httpServer := configureHTTPServer(cfg.Addr(), srv.Handler(), log)

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	guard.Go("session-sweeper", func() {
		session.Sweep(sweepCtx, stores.Sessions, session.SweepInterval)
	})

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpServer.Addr, err)
	}

	serveErr := make(chan error, 1)
	guard.Go("http-server", func() {
		log.Info().Msgf("Server running on port %d", cfg.Port)
		serveErr <- httpServer.Serve(ln)
	})

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")

	return nil
}
