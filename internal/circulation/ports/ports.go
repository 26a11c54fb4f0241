// Package ports defines the external contracts the circulation engine
// consumes. Interfaces live here because they are shared by the trackers,
// the settlement coordinator, and the service; implementations live under
// store/ and notification/.
package ports

import (
	"context"
	"time"

	"libris/internal/circulation/models"
	id "libris/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// RecordStore is the durable persistence contract. Implementations must
// make SetPenaltyCharge and the two Archive operations atomic: an archive
// moves the entity out of its active aggregate, updates copy availability,
// and appends the history entries as one unit.
type RecordStore interface {
	GetRental(ctx context.Context, rentalID id.RentalID) (*models.Rental, error)
	CreateRental(ctx context.Context, rental *models.Rental) error
	// UpdateRentalTerm persists a successful renewal: the new end date and
	// renewal count.
	UpdateRentalTerm(ctx context.Context, rentalID id.RentalID, endDate time.Time, renewals int) error
	// SetPenaltyCharge overwrites the accrued charge on a rental.
	// Recomputation on later ticks is idempotent in result.
	SetPenaltyCharge(ctx context.Context, rentalID id.RentalID, amount int64) error
	// ClearPenaltyCharge drops the persisted charge. UpdateRentalTerm also
	// clears it; this exists for the sweep to compensate a charge it wrote
	// against a cycle that a concurrent renewal superseded.
	ClearPenaltyCharge(ctx context.Context, rentalID id.RentalID) error
	// ArchiveRental moves the rental into the archive aggregate, marks its
	// copy available, and appends one entry each to the copy history and
	// the profile history.
	ArchiveRental(ctx context.Context, rentalID id.RentalID, returnedAt time.Time) error
	// ListActiveRentals supports registry rehydration after a restart.
	ListActiveRentals(ctx context.Context) ([]*models.Rental, error)

	GetReservation(ctx context.Context, reservationID id.ReservationID) (*models.Reservation, error)
	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	// ArchiveReservation moves the reservation into the history aggregate.
	// releaseCopy is false on the claim path, where the copy transitions
	// straight into the new rental and must stay unavailable.
	ArchiveReservation(ctx context.Context, reservationID id.ReservationID, closedAt time.Time, expired, releaseCopy bool) error
	ListActiveReservations(ctx context.Context) ([]*models.Reservation, error)

	GetCopy(ctx context.Context, copyID id.CopyID) (*models.Copy, error)
	// SetCopyAvailable flips copy availability when a rent or reservation
	// claims a copy. Archival transitions release copies themselves.
	SetCopyAvailable(ctx context.Context, copyID id.CopyID, available bool) error
	GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
}

// EphemeralStore is a TTL key-value store used only as an idempotency
// ledger. Any TTL-capable store satisfies it; the engine never depends on
// a specific cache product.
type EphemeralStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	// TakeAndDelete atomically checks for the key and deletes it. Exactly
	// one concurrent caller observes true for a given key.
	TakeAndDelete(ctx context.Context, key string) (bool, error)
}

// Notifier is best-effort outbound messaging. Send failures are logged by
// callers and never propagate.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
