// Package config loads the process configuration record from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Mode is the deployment mode selected by NODE_ENV.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

const (
	// DevelopmentOrigin is the local frontend dev server.
	DevelopmentOrigin = "http://localhost:5173"
	// DeployedOrigin is the hosted frontend, always allowed.
	DeployedOrigin = "https://onlinerestaurantreservation.netlify.app"
	// PlaceholderSecret is used when SESSION_SECRET is unset. Real deployments must override it.
	PlaceholderSecret = "your-secret-key"
)

// ErrConfiguration is wrapped by every validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config is the configuration record. It is built once at startup and never mutated.
type Config struct {
	Port          int           `help:"HTTP listen port" default:"4000" env:"PORT"`
	FrontendURL   string        `help:"production frontend origin allowed by CORS" default:"" env:"FRONTEND_URL"`
	SessionSecret string        `help:"key used to sign session cookies" default:"your-secret-key" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `help:"session lifetime, fixed from creation" default:"24h" env:"SESSION_TTL"`
	Environment   string        `help:"deployment environment (development or production)" default:"development" env:"NODE_ENV"`
	TrustProxy    bool          `help:"trust X-Forwarded-* headers from a fronting proxy" default:"false" env:"TRUST_PROXY"`
	BodyLimit     int64         `help:"maximum request body size in bytes" default:"102400" env:"BODY_LIMIT"`
	MenuCatalog   string        `help:"path to a YAML menu catalog, embedded catalog when empty" default:"" env:"MENU_CATALOG"`
	Tracing       bool          `help:"enable OpenTelemetry tracing and metrics" default:"false" env:"TRACING"`
	FailFast      bool          `help:"exit after logging a fault that escaped request handling" default:"false" env:"FAIL_FAST"`

	StoreType        string        `help:"data store (memory, postgres or mongo)" default:"memory" env:"STORE_TYPE" enum:"memory,postgres,mongo"`
	SessionStoreType string        `help:"session store (memory, postgres or redis)" default:"memory" env:"SESSION_STORE" enum:"memory,postgres,redis"`
	Postgres         PostgresFlags `embed:"" prefix:"postgres-"`
	Mongo            MongoFlags    `embed:"" prefix:"mongo-"`
	Redis            RedisFlags    `embed:"" prefix:"redis-"`
}

type PostgresFlags struct {
	ConnString      string `help:"PostgreSQL connection string" env:"DATABASE_URL"`
	MaxConns        int32  `help:"maximum number of connections in pool" default:"10"`
	MinConns        int32  `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32  `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32  `help:"maximum connection idle time in seconds" default:"1800"`
	AutoMigrate     bool   `help:"run database migrations on startup" default:"true" env:"AUTO_MIGRATE"`
}

func (p *PostgresFlags) Check() error {
	if p.ConnString == "" {
		return fmt.Errorf("%w: PostgreSQL connection string is required (--postgres-conn-string or DATABASE_URL)", ErrConfiguration)
	}
	return nil
}

type MongoFlags struct {
	URI      string `help:"MongoDB connection URI" env:"MONGO_URI"`
	Database string `help:"MongoDB database name" default:"restaurant" env:"MONGO_DATABASE"`
}

func (m *MongoFlags) Check() error {
	if m.URI == "" {
		return fmt.Errorf("%w: MongoDB URI is required (--mongo-uri or MONGO_URI)", ErrConfiguration)
	}
	return nil
}

type RedisFlags struct {
	Addr     string `help:"Redis address (host:port)" env:"REDIS_ADDR"`
	Password string `help:"Redis password" default:"" env:"REDIS_PASSWORD"`
	DB       int    `help:"Redis database number" default:"0" env:"REDIS_DB"`
}

func (r *RedisFlags) Check() error {
	if r.Addr == "" {
		return fmt.Errorf("%w: Redis address is required (--redis-addr or REDIS_ADDR)", ErrConfiguration)
	}
	return nil
}

// Validate checks the values needed by the selected stores. With defaults nothing is required.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrConfiguration, c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session TTL must be greater than 0", ErrConfiguration)
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("%w: body limit must be greater than 0", ErrConfiguration)
	}

	switch c.StoreType {
	case "postgres":
		if err := c.Postgres.Check(); err != nil {
			return err
		}
	case "mongo":
		if err := c.Mongo.Check(); err != nil {
			return err
		}
	}

	switch c.SessionStoreType {
	case "postgres":
		if err := c.Postgres.Check(); err != nil {
			return err
		}
	case "redis":
		if err := c.Redis.Check(); err != nil {
			return err
		}
	}

	return nil
}

// Mode reports production only when NODE_ENV is exactly "production".
func (c *Config) Mode() Mode {
	if c.Environment == string(ModeProduction) {
		return ModeProduction
	}
	return ModeDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Mode() == ModeProduction
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowedOrigins returns the CORS allow list in order: local dev server, FRONTEND_URL, deployed
// frontend. Empty and duplicate entries are dropped.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, 3)
	for _, o := range []string{DevelopmentOrigin, c.FrontendURL, DeployedOrigin} {
		if o == "" || slices.Contains(origins, o) {
			continue
		}
		origins = append(origins, o)
	}
	return origins
}

// UsesPlaceholderSecret reports whether the session secret is the published fallback.
func (c *Config) UsesPlaceholderSecret() bool {
	return c.SessionSecret == PlaceholderSecret
}

// LoadDotEnv reads a .env file into the process environment. Variables already set win and a
// missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParserOptions are the kong options for the server command line.
func ParserOptions() []kong.Option {
	return []kong.Option{
		kong.Name("reservations"),
		kong.Description("Restaurant reservation API"),
	}
}
