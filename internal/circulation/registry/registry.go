// Package registry holds the in-memory index of active obligations: every
// rental and reservation currently tracked against wall-clock time. It is
// pure data structure with synchronized access; persistence and
// notification stay with the trackers.
package registry

import (
	"sync"
	"time"

	"libris/internal/circulation/models"
	id "libris/pkg/domain"
)

// RentalRegistry indexes active rentals by id. All mutation happens under
// the registry lock; callers get copies, never pointers into the map, so
// no lock is ever held across I/O.
type RentalRegistry struct {
	mu      sync.RWMutex
	rentals map[id.RentalID]*models.TrackedRental
}

func NewRentalRegistry() *RentalRegistry {
	return &RentalRegistry{
		rentals: make(map[id.RentalID]*models.TrackedRental),
	}
}

// Add inserts a tracked rental. A duplicate id is rejected and the existing
// entry is kept untouched; overwriting would silently reset the renewal
// count and re-arm the overdue notification mid-cycle.
func (r *RentalRegistry) Add(tracked models.TrackedRental) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rentals[tracked.ID]; exists {
		return false
	}
	r.rentals[tracked.ID] = &tracked
	return true
}

// Renew is a compare-and-swap on the tracked end date. It succeeds only if
// the entry exists and currently holds expectedEnd; on success the end date
// moves to newEnd, the renewal count increments, and both cycle flags are
// cleared so a later crossing charges and notifies afresh. A false return
// means a stale caller or a race with return/expiry; nothing is mutated.
func (r *RentalRegistry) Renew(rentalID id.RentalID, expectedEnd, newEnd time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracked, exists := r.rentals[rentalID]
	if !exists || !tracked.EndDate.Equal(expectedEnd) {
		return false
	}

	tracked.EndDate = newEnd
	tracked.Renewals++
	tracked.PenaltyAccrued = false
	tracked.NotifiedOverdue = false
	return true
}

// Remove deletes the entry and reports whether it was actually present.
func (r *RentalRegistry) Remove(rentalID id.RentalID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.rentals[rentalID]
	delete(r.rentals, rentalID)
	return exists
}

// Get returns a copy of the tracked entry.
func (r *RentalRegistry) Get(rentalID id.RentalID) (models.TrackedRental, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracked, exists := r.rentals[rentalID]
	if !exists {
		return models.TrackedRental{}, false
	}
	return *tracked, true
}

// Snapshot copies the current entries for a sweep. The sweep then does its
// I/O against the copies and reports results back via MarkCharged.
func (r *RentalRegistry) Snapshot() []models.TrackedRental {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.TrackedRental, 0, len(r.rentals))
	for _, tracked := range r.rentals {
		out = append(out, *tracked)
	}
	return out
}

// MarkCharged records that a charge for the cycle ending at asOfEnd has
// been persisted, and optionally that the overdue notification went out.
// The end-date guard makes the write a no-op when a renewal raced the
// sweep: the new cycle must not inherit the old cycle's flags.
func (r *RentalRegistry) MarkCharged(rentalID id.RentalID, asOfEnd time.Time, notified bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracked, exists := r.rentals[rentalID]
	if !exists || !tracked.EndDate.Equal(asOfEnd) {
		return false
	}

	tracked.PenaltyAccrued = true
	if notified {
		tracked.NotifiedOverdue = true
	}
	return true
}

// Len reports the number of tracked rentals.
func (r *RentalRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rentals)
}
