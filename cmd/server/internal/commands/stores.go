package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/reservations/internal/config"
	"github.com/wolfeidau/reservations/internal/server"
	"github.com/wolfeidau/reservations/internal/store"
	memorystore "github.com/wolfeidau/reservations/internal/store/memory"
	mongostore "github.com/wolfeidau/reservations/internal/store/mongo"
	postgresstore "github.com/wolfeidau/reservations/internal/store/postgres"
	redisstore "github.com/wolfeidau/reservations/internal/store/redis"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// connectMaxElapsed bounds how long startup waits for a backing store.
const connectMaxElapsed = 30 * time.Second

// openStores builds the data and session stores selected by cfg. The returned close func
// releases every connection that was opened.
func openStores(ctx context.Context, cfg *config.Config) (server.Stores, func(), error) {
	log := zerolog.Ctx(ctx)

	var (
		stores  = server.Stores{Health: map[string]store.Pinger{}}
		closers []func()
		pool    *pgxpool.Pool
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	postgresPool := func() (*pgxpool.Pool, error) {
		if pool != nil {
			return pool, nil
		}
		p, err := connect(ctx, "postgres", func() (*pgxpool.Pool, error) {
			return postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
				ConnString:      cfg.Postgres.ConnString,
				MaxConns:        cfg.Postgres.MaxConns,
				MinConns:        cfg.Postgres.MinConns,
				MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
				MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
				AutoMigrate:     cfg.Postgres.AutoMigrate,
			})
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		pool = p
		closers = append(closers, p.Close)
		stores.Health["postgres"] = p
		return p, nil
	}

	switch cfg.StoreType {
	case "postgres":
		p, err := postgresPool()
		if err != nil {
			closeAll()
			return server.Stores{}, nil, err
		}
		stores.Reservations = postgresstore.NewReservationStore(p)
		stores.Users = postgresstore.NewUserStore(p)
		log.Info().Msg("Using PostgreSQL data stores")

	case "mongo":
		db, err := connect(ctx, "mongo", func() (*mongo.Database, error) {
			return mongostore.Connect(ctx, mongostore.Config{
				URI:      cfg.Mongo.URI,
				Database: cfg.Mongo.Database,
			})
		})
		if err != nil {
			closeAll()
			return server.Stores{}, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		closers = append(closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect from mongo")
			}
		})
		stores.Reservations = mongostore.NewReservationStore(db)
		stores.Users = mongostore.NewUserStore(db)
		stores.Health["mongo"] = mongostore.NewPinger(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("Using MongoDB data stores")

	default:
		stores.Reservations = memorystore.NewReservationStore()
		stores.Users = memorystore.NewUserStore()
		log.Info().Msg("Using in-memory data stores")
	}

	switch cfg.SessionStoreType {
	case "postgres":
		p, err := postgresPool()
		if err != nil {
			closeAll()
			return server.Stores{}, nil, err
		}
		stores.Sessions = postgresstore.NewSessionStore(p)
		log.Info().Msg("Using PostgreSQL session store")

	case "redis":
		client, err := connect(ctx, "redis", func() (*goredis.Client, error) {
			return redisstore.NewClient(ctx, redisstore.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
		})
		if err != nil {
			closeAll()
			return server.Stores{}, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis client")
			}
		})
		sessions := redisstore.NewSessionStore(client)
		stores.Sessions = sessions
		stores.Health["redis"] = sessions
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis session store")

	default:
		stores.Sessions = memorystore.NewSessionStore()
		log.Info().Msg("Using in-memory session store")
	}

	return stores, closeAll, nil
}

// connect retries fn with exponential backoff until it succeeds, ctx is done or
// connectMaxElapsed passes.
func connect[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	log := zerolog.Ctx(ctx)

	return backoff.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err != nil {
			log.Warn().Err(err).Str("store", name).Msg("Store unavailable, retrying")
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(connectMaxElapsed),
	)
}
