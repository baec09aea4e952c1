package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
)

// ReservationStore implements store.ReservationStore using in-memory storage.
type ReservationStore struct {
	mu sync.RWMutex

	reservations map[uuid.UUID]*models.Reservation // reservation_id -> Reservation
	byUser       map[uuid.UUID][]uuid.UUID         // user_id -> []reservation_id
}

// NewReservationStore creates a new in-memory reservation store.
func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		reservations: make(map[uuid.UUID]*models.Reservation),
		byUser:       make(map[uuid.UUID][]uuid.UUID),
	}
}

// Create stores a new reservation.
func (s *ReservationStore) Create(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reservations[r.ID] = r.Clone()

	if r.UserID != nil {
		s.byUser[*r.UserID] = append(s.byUser[*r.UserID], r.ID)
	}

	return nil
}

// Get retrieves a reservation by ID.
func (s *ReservationStore) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.reservations[id]
	if !exists {
		return nil, store.ErrReservationNotFound
	}

	return r.Clone(), nil
}

// Update replaces the date and time of a reservation.
func (s *ReservationStore) Update(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.reservations[r.ID]
	if !exists {
		return store.ErrReservationNotFound
	}

	existing.Date = r.Date
	existing.Time = r.Time
	existing.UpdatedAt = r.UpdatedAt

	return nil
}

// Delete removes a reservation.
func (s *ReservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.reservations[id]
	if !exists {
		return store.ErrReservationNotFound
	}

	if r.UserID != nil {
		s.removeFromUserIndex(*r.UserID, id)
	}
	delete(s.reservations, id)

	return nil
}

// ListByUser returns a user's reservations ordered by date and time.
func (s *ReservationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]*models.Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.reservations[id].Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})

	return out, nil
}

func (s *ReservationStore) removeFromUserIndex(userID, id uuid.UUID) {
	ids := s.byUser[userID]
	for i, rid := range ids {
		if rid == id {
			s.byUser[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	// Clean up empty entries
	if len(s.byUser[userID]) == 0 {
		delete(s.byUser, userID)
	}
}

// Len returns the number of stored reservations.
func (s *ReservationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}
