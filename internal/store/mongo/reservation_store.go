package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// reservationDocument is the stored shape of a reservation. IDs are kept as strings.
type reservationDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id,omitempty"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Email     string    `bson:"email"`
	Phone     string    `bson:"phone"`
	Date      string    `bson:"date"`
	Time      string    `bson:"time"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toReservationDocument(r *models.Reservation) reservationDocument {
	doc := reservationDocument{
		ID:        r.ID.String(),
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Date:      r.Date,
		Time:      r.Time,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.UserID != nil {
		doc.UserID = r.UserID.String()
	}
	return doc
}

func (d reservationDocument) model() (*models.Reservation, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation id %q: %w", d.ID, err)
	}

	r := &models.Reservation{
		ID:        id,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Date:      d.Date,
		Time:      d.Time,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	if d.UserID != "" {
		userID, err := uuid.Parse(d.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", d.UserID, err)
		}
		r.UserID = &userID
	}

	return r, nil
}

// ReservationStore implements store.ReservationStore on a MongoDB collection.
type ReservationStore struct {
	coll *mongo.Collection
}

// NewReservationStore creates a reservation store on db.
func NewReservationStore(db *mongo.Database) *ReservationStore {
	return &ReservationStore{coll: db.Collection(reservationsCollection)}
}

// Create inserts a reservation.
func (s *ReservationStore) Create(ctx context.Context, r *models.Reservation) error {
	if _, err := s.coll.InsertOne(ctx, toReservationDocument(r)); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// Get retrieves a reservation by ID.
func (s *ReservationStore) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var doc reservationDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return doc.model()
}

// Update replaces the date and time of a reservation.
func (s *ReservationStore) Update(ctx context.Context, r *models.Reservation) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: r.ID.String()}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "date", Value: r.Date},
			{Key: "time", Value: r.Time},
			{Key: "updated_at", Value: r.UpdatedAt},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return store.ErrReservationNotFound
	}

	return nil
}

// Delete removes a reservation.
func (s *ReservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	if result.DeletedCount == 0 {
		return store.ErrReservationNotFound
	}

	return nil
}

// ListByUser returns a user's reservations ordered by date and time.
func (s *ReservationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Reservation, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := s.coll.Find(ctx, bson.D{{Key: "user_id", Value: userID.String()}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	var docs []reservationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	out := make([]*models.Reservation, 0, len(docs))
	for _, doc := range docs {
		r, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, nil
}
