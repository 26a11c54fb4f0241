package models

import (
	"time"

	id "libris/pkg/domain"
)

// Rental is the durable record of a copy on loan to a profile. The record
// store owns it; the obligation registry holds a tracked mirror.
type Rental struct {
	ID        id.RentalID
	ProfileID id.ProfileID
	CopyID    id.CopyID
	BeginDate time.Time
	EndDate   time.Time
	Renewals  int

	// PenaltyCharge is the accrued overdue charge in minor currency units.
	// nil means no overdue crossing has ever been charged.
	PenaltyCharge *int64
}

// Overdue reports whether the rental has crossed its end date at now.
// The crossing is inclusive: at now == EndDate the rental is overdue.
func (r *Rental) Overdue(now time.Time) bool {
	return !now.Before(r.EndDate)
}

// Reservation is a durable hold on a copy pending pickup.
type Reservation struct {
	ID        id.ReservationID
	ProfileID id.ProfileID
	CopyID    id.CopyID
	BeginDate time.Time
	EndDate   time.Time
}

// Copy is a physical item that can be rented or reserved.
type Copy struct {
	ID        id.CopyID
	Title     string
	Available bool
}

// Profile is the library member rentals and reservations belong to.
type Profile struct {
	ID    id.ProfileID
	Email string
	Name  string
}

// ArchivedRental is the archival record created when a rental is closed
// out. It is appended to both the copy history and the profile history.
type ArchivedRental struct {
	RentalID      id.RentalID
	ProfileID     id.ProfileID
	CopyID        id.CopyID
	BeginDate     time.Time
	EndDate       time.Time
	ReturnedAt    time.Time
	PenaltyCharge *int64
}

// ArchivedReservation is the history record of a closed reservation.
// Expired distinguishes tick-driven expiry from cancellation or a claim.
type ArchivedReservation struct {
	ReservationID id.ReservationID
	ProfileID     id.ProfileID
	CopyID        id.CopyID
	BeginDate     time.Time
	EndDate       time.Time
	ClosedAt      time.Time
	Expired       bool
}

// SettlementToken marks a rental whose return is physically complete but
// financially unsettled. It lives only in the ephemeral store; its mere
// existence means the rental must not be archived until the penalty is paid.
type SettlementToken struct {
	RentalID  id.RentalID `json:"rental_id"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}
