package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash []byte    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDocument) model() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	return &models.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// UserStore implements store.UserStore on a MongoDB collection. The unique email index is
// created by Connect.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a user store on db.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// Create inserts a user, mapping a duplicate email to store.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.coll.InsertOne(ctx, userDocument{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.model()
}
