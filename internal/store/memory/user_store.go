package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	mu sync.RWMutex

	users   map[uuid.UUID]*models.User // user_id -> User
	byEmail map[string]uuid.UUID       // email -> user_id
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create stores a new user, rejecting duplicate emails.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return store.ErrUserAlreadyExists
	}

	clone := *u
	s.users[u.ID] = &clone
	s.byEmail[u.Email] = u.ID

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *u
	return &clone, nil
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[email]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *s.users[id]
	return &clone, nil
}
