package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"libris/internal/circulation/models"
	"libris/internal/circulation/ports/mocks"
	"libris/internal/circulation/store/memory"
	id "libris/pkg/domain"
	dErrors "libris/pkg/domain-errors"
	"libris/pkg/platform/sentinel"
)

// stubTracking records the rental ids whose tracking was stopped.
type stubTracking struct {
	mu      sync.Mutex
	removed []id.RentalID
}

func (t *stubTracking) ReturnOfItem(rentalID id.RentalID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removed = append(t.removed, rentalID)
	return true
}

func (t *stubTracking) removals() []id.RentalID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]id.RentalID, len(t.removed))
	copy(out, t.removed)
	return out
}

type CoordinatorSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	store       *mocks.MockRecordStore
	ephemeral   *memory.EphemeralStore
	tracking    *stubTracking
	clock       *clockwork.FakeClock
	coordinator *Coordinator
	ctx         context.Context
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockRecordStore(s.ctrl)
	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	s.ephemeral = memory.NewEphemeralStore(s.clock)
	s.tracking = &stubTracking{}
	s.ctx = context.Background()

	var err error
	s.coordinator, err = New(s.store, s.ephemeral, s.tracking, 24*time.Hour, WithClock(s.clock))
	s.Require().NoError(err)
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) rentalWithCharge(charge *int64) *models.Rental {
	return &models.Rental{
		ID:            id.RentalID(uuid.New()),
		ProfileID:     id.ProfileID(uuid.New()),
		CopyID:        id.CopyID(uuid.New()),
		BeginDate:     s.clock.Now().Add(-30 * 24 * time.Hour),
		EndDate:       s.clock.Now().Add(-24 * time.Hour),
		PenaltyCharge: charge,
	}
}

func charge(v int64) *int64 { return &v }

func (s *CoordinatorSuite) TestReturnOne() {
	s.Run("archives a clean return immediately", func() {
		rental := s.rentalWithCharge(nil)
		s.store.EXPECT().GetRental(gomock.Any(), rental.ID).Return(rental, nil)
		s.store.EXPECT().ArchiveRental(gomock.Any(), rental.ID, s.clock.Now()).Return(nil)

		result, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)
		s.False(result.PendingPayment)
		s.Contains(s.tracking.removals(), rental.ID)
	})

	s.Run("archives a return whose charge is zero", func() {
		rental := s.rentalWithCharge(charge(0))
		s.store.EXPECT().GetRental(gomock.Any(), rental.ID).Return(rental, nil)
		s.store.EXPECT().ArchiveRental(gomock.Any(), rental.ID, s.clock.Now()).Return(nil)

		result, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)
		s.False(result.PendingPayment)
	})

	s.Run("defers settlement when a penalty is due", func() {
		rental := s.rentalWithCharge(charge(500))
		s.store.EXPECT().GetRental(gomock.Any(), rental.ID).Return(rental, nil)

		result, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)
		s.True(result.PendingPayment)

		pending, err := s.coordinator.PendingSettlement(s.ctx, rental.ID)
		s.Require().NoError(err)
		s.True(pending)

		// The rental must still be tracked: no archival happened.
		s.NotContains(s.tracking.removals(), rental.ID)
	})

	s.Run("returns not found for an unknown rental", func() {
		unknown := id.RentalID(uuid.New())
		s.store.EXPECT().GetRental(gomock.Any(), unknown).Return(nil, sentinel.ErrNotFound)

		_, err := s.coordinator.ReturnOne(s.ctx, unknown)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CoordinatorSuite) TestPayThePenalty() {
	s.Run("completes a deferred settlement exactly once", func() {
		rental := s.rentalWithCharge(charge(500))
		s.store.EXPECT().GetRental(gomock.Any(), rental.ID).Return(rental, nil)

		result, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)
		s.Require().True(result.PendingPayment)

		s.store.EXPECT().ArchiveRental(gomock.Any(), rental.ID, s.clock.Now()).Return(nil)
		s.Require().NoError(s.coordinator.PayThePenalty(s.ctx, rental.ID))
		s.Contains(s.tracking.removals(), rental.ID)

		// A second payment attempt finds no token.
		err = s.coordinator.PayThePenalty(s.ctx, rental.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects payment when nothing is pending", func() {
		err := s.coordinator.PayThePenalty(s.ctx, id.RentalID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("re-issues the token when archival fails", func() {
		rental := s.rentalWithCharge(charge(500))
		s.store.EXPECT().GetRental(gomock.Any(), rental.ID).Return(rental, nil)

		_, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)

		s.store.EXPECT().ArchiveRental(gomock.Any(), rental.ID, s.clock.Now()).
			Return(errors.New("db down"))
		s.Require().Error(s.coordinator.PayThePenalty(s.ctx, rental.ID))

		// The token is back, so the settlement can be retried.
		pending, err := s.coordinator.PendingSettlement(s.ctx, rental.ID)
		s.Require().NoError(err)
		s.True(pending)

		s.store.EXPECT().ArchiveRental(gomock.Any(), rental.ID, s.clock.Now()).Return(nil)
		s.Require().NoError(s.coordinator.PayThePenalty(s.ctx, rental.ID))
	})

	s.Run("rejects payment after the token lapses", func() {
		rental := s.rentalWithCharge(charge(500))
		s.store.EXPECT().GetRental(gomock.Any(), rental.ID).Return(rental, nil)

		_, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)

		s.clock.Advance(25 * time.Hour)

		err = s.coordinator.PayThePenalty(s.ctx, rental.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("a repeated return refreshes a lapsed token", func() {
		rental := s.rentalWithCharge(charge(500))
		s.store.EXPECT().GetRental(gomock.Any(), rental.ID).Return(rental, nil).Times(2)

		_, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)

		s.clock.Advance(25 * time.Hour)

		result, err := s.coordinator.ReturnOne(s.ctx, rental.ID)
		s.Require().NoError(err)
		s.True(result.PendingPayment)

		s.store.EXPECT().ArchiveRental(gomock.Any(), rental.ID, s.clock.Now()).Return(nil)
		s.Require().NoError(s.coordinator.PayThePenalty(s.ctx, rental.ID))
	})
}

func (s *CoordinatorSuite) TestReturnMany() {
	s.Run("processes a mixed batch", func() {
		clean := s.rentalWithCharge(nil)
		owing := s.rentalWithCharge(charge(300))

		s.store.EXPECT().GetRental(gomock.Any(), clean.ID).Return(clean, nil)
		s.store.EXPECT().GetRental(gomock.Any(), owing.ID).Return(owing, nil)
		s.store.EXPECT().ArchiveRental(gomock.Any(), clean.ID, s.clock.Now()).Return(nil)

		results, err := s.coordinator.ReturnMany(s.ctx, []id.RentalID{clean.ID, owing.ID})
		s.Require().NoError(err)
		s.Require().Len(results, 2)
		s.False(results[0].PendingPayment)
		s.True(results[1].PendingPayment)
	})

	s.Run("rejects duplicate ids with zero side effects", func() {
		rentalID := id.RentalID(uuid.New())
		before := len(s.tracking.removals())

		_, err := s.coordinator.ReturnMany(s.ctx, []id.RentalID{rentalID, rentalID})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Len(s.tracking.removals(), before)
	})

	s.Run("aborts on a single unknown id before any archival", func() {
		known := s.rentalWithCharge(nil)
		unknown := id.RentalID(uuid.New())
		before := len(s.tracking.removals())

		s.store.EXPECT().GetRental(gomock.Any(), known.ID).Return(known, nil)
		s.store.EXPECT().GetRental(gomock.Any(), unknown).Return(nil, sentinel.ErrNotFound)

		_, err := s.coordinator.ReturnMany(s.ctx, []id.RentalID{known.ID, unknown})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Len(s.tracking.removals(), before)
	})
}
