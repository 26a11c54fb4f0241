package registry

import (
	"sync"

	"libris/internal/circulation/models"
	id "libris/pkg/domain"
)

// ReservationRegistry indexes active reservations by id. Reservations carry
// no charge semantics, so the entry is simpler than a tracked rental.
type ReservationRegistry struct {
	mu           sync.RWMutex
	reservations map[id.ReservationID]*models.TrackedReservation
}

func NewReservationRegistry() *ReservationRegistry {
	return &ReservationRegistry{
		reservations: make(map[id.ReservationID]*models.TrackedReservation),
	}
}

// Add inserts a tracked reservation, rejecting duplicates like the rental
// registry does.
func (r *ReservationRegistry) Add(tracked models.TrackedReservation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reservations[tracked.ID]; exists {
		return false
	}
	r.reservations[tracked.ID] = &tracked
	return true
}

// Remove deletes the entry and reports whether it was present.
func (r *ReservationRegistry) Remove(reservationID id.ReservationID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.reservations[reservationID]
	delete(r.reservations, reservationID)
	return exists
}

// Get returns a copy of the tracked entry.
func (r *ReservationRegistry) Get(reservationID id.ReservationID) (models.TrackedReservation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracked, exists := r.reservations[reservationID]
	if !exists {
		return models.TrackedReservation{}, false
	}
	return *tracked, true
}

// Snapshot copies the current entries for a sweep.
func (r *ReservationRegistry) Snapshot() []models.TrackedReservation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.TrackedReservation, 0, len(r.reservations))
	for _, tracked := range r.reservations {
		out = append(out, *tracked)
	}
	return out
}

// Len reports the number of tracked reservations.
func (r *ReservationRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reservations)
}
