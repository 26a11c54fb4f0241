package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "libris/pkg/domain-errors"
)

// Typed identifiers for circulation aggregates. Wrapping uuid.UUID keeps a
// RentalID from ever being passed where a CopyID is expected; the compiler
// enforces the distinction.
type (
	RentalID      uuid.UUID
	ReservationID uuid.UUID
	CopyID        uuid.UUID
	ProfileID     uuid.UUID
)

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Enforced at trust boundaries so internals never see a
// zero id.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is required", kind))
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s", kind))
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must not be the nil UUID", kind))
	}
	return parsed, nil
}

func ParseRentalID(s string) (RentalID, error) {
	parsed, err := parseUUID(s, "rental id")
	return RentalID(parsed), err
}

func ParseReservationID(s string) (ReservationID, error) {
	parsed, err := parseUUID(s, "reservation id")
	return ReservationID(parsed), err
}

func ParseCopyID(s string) (CopyID, error) {
	parsed, err := parseUUID(s, "copy id")
	return CopyID(parsed), err
}

func ParseProfileID(s string) (ProfileID, error) {
	parsed, err := parseUUID(s, "profile id")
	return ProfileID(parsed), err
}

func NewRentalID() RentalID           { return RentalID(uuid.New()) }
func NewReservationID() ReservationID { return ReservationID(uuid.New()) }
func NewCopyID() CopyID               { return CopyID(uuid.New()) }
func NewProfileID() ProfileID         { return ProfileID(uuid.New()) }

func (id RentalID) String() string      { return uuid.UUID(id).String() }
func (id ReservationID) String() string { return uuid.UUID(id).String() }
func (id CopyID) String() string        { return uuid.UUID(id).String() }
func (id ProfileID) String() string     { return uuid.UUID(id).String() }

func (id RentalID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ReservationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CopyID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ProfileID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
