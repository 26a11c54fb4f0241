package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "libris/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRentalID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRentalID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseRentalID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseRentalID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, RentalID(validUUID), id)
	})

	t.Run("all id kinds share the invariant", func(t *testing.T) {
		_, err := ParseReservationID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = ParseCopyID("not-a-uuid")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = ParseProfileID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestIDRoundTrip(t *testing.T) {
	rentalID := NewRentalID()
	parsed, err := ParseRentalID(rentalID.String())
	require.NoError(t, err)
	assert.Equal(t, rentalID, parsed)
}

func TestIsNil(t *testing.T) {
	assert.True(t, RentalID{}.IsNil())
	assert.True(t, ProfileID{}.IsNil())
	assert.False(t, NewRentalID().IsNil())
	assert.False(t, NewCopyID().IsNil())
}

// TestTypeDistinction verifies the compiler enforces type safety.
func TestTypeDistinction(t *testing.T) {
	rentalID := RentalID(uuid.New())
	copyID := CopyID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ RentalID = copyID   // compile error
	// var _ CopyID = rentalID   // compile error

	assert.NotEqual(t, uuid.UUID(rentalID), uuid.UUID(copyID))
}
