package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create inserts a user. A taken email maps to store.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (user_id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getBy(ctx, `user_id = $1`, id)
}

// GetByEmail retrieves a user by email, ignoring case.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getBy(ctx, `lower(email) = lower($1)`, email)
}

func (s *UserStore) getBy(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT user_id, name, email, password_hash, created_at FROM users WHERE ` + where

	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	return &u, nil
}
