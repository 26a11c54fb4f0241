package models

import (
	"time"

	id "libris/pkg/domain"
)

// TrackedRental is the registry's in-memory mirror of an active rental.
// It is owned exclusively by the obligation registry; the durable rental
// record remains the source of truth for everything except the tracking
// flags below.
type TrackedRental struct {
	ID        id.RentalID
	ProfileID id.ProfileID
	CopyID    id.CopyID
	BeginDate time.Time
	EndDate   time.Time
	Renewals  int

	// PenaltyAccrued is set once a tick has persisted a charge for the
	// current cycle. A renewal clears it.
	PenaltyAccrued bool

	// NotifiedOverdue guards the one-shot overdue notification per cycle.
	NotifiedOverdue bool
}

// TrackedReservation is the registry mirror of an active reservation.
type TrackedReservation struct {
	ID        id.ReservationID
	ProfileID id.ProfileID
	CopyID    id.CopyID
	BeginDate time.Time
	EndDate   time.Time
}
