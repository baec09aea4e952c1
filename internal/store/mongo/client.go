// Package mongo stores reservations and users in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	reservationsCollection = "reservations"
	usersCollection        = "users"
)

// ErrEmptyURI is returned when no MongoDB connection URI is configured.
var ErrEmptyURI = errors.New("empty mongo connection URI")

// Config holds MongoDB connection settings.
type Config struct {
	URI      string
	Database string

	// ConnectTimeout bounds connection and the initial ping. Default: 10s
	ConnectTimeout time.Duration
}

// Connect creates a client, pings the primary and ensures the collection indexes exist.
func Connect(ctx context.Context, cfg Config) (*mongo.Database, error) {
	if cfg.URI == "" {
		return nil, ErrEmptyURI
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)

	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")

	return db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = db.Collection(reservationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create reservations index: %w", err)
	}

	return nil
}

// Pinger checks connectivity of the database's client.
type Pinger struct {
	db *mongo.Database
}

// NewPinger returns a Pinger for db.
func NewPinger(db *mongo.Database) *Pinger {
	return &Pinger{db: db}
}

// Ping verifies the primary is reachable.
func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.Client().Ping(ctx, readpref.Primary())
}
