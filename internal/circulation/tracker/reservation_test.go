package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"libris/internal/circulation/models"
	"libris/internal/circulation/ports/mocks"
	"libris/internal/circulation/registry"
	id "libris/pkg/domain"
)

type ReservationTrackerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	store    *mocks.MockRecordStore
	registry *registry.ReservationRegistry
	tracker  *ReservationExpiryTracker
	ctx      context.Context
	begin    time.Time
}

func (s *ReservationTrackerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockRecordStore(s.ctrl)
	s.registry = registry.NewReservationRegistry()
	s.ctx = context.Background()
	s.begin = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var err error
	s.tracker, err = NewReservationExpiryTracker(s.registry, s.store)
	s.Require().NoError(err)
}

func TestReservationTrackerSuite(t *testing.T) {
	suite.Run(t, new(ReservationTrackerSuite))
}

// newReservation returns a reservation with a 72-hour hold window.
func (s *ReservationTrackerSuite) newReservation() *models.Reservation {
	return &models.Reservation{
		ID:        id.ReservationID(uuid.New()),
		ProfileID: id.ProfileID(uuid.New()),
		CopyID:    id.CopyID(uuid.New()),
		BeginDate: s.begin,
		EndDate:   s.begin.Add(72 * time.Hour),
	}
}

func (s *ReservationTrackerSuite) TestOnTick_BeforeEndDateDoesNothing() {
	reservation := s.newReservation()
	s.tracker.AddReservation(reservation)

	s.tracker.OnTick(s.ctx, reservation.EndDate.Add(-time.Minute))

	_, ok := s.tracker.Tracked(reservation.ID)
	s.True(ok)
}

func (s *ReservationTrackerSuite) TestOnTick_ExpiresAtEndDate() {
	reservation := s.newReservation()
	s.tracker.AddReservation(reservation)

	now := reservation.EndDate
	s.store.EXPECT().ArchiveReservation(gomock.Any(), reservation.ID, now, true, true).Return(nil)

	s.tracker.OnTick(s.ctx, now)

	_, ok := s.tracker.Tracked(reservation.ID)
	s.False(ok)
}

func (s *ReservationTrackerSuite) TestOnTick_ArchiveFailureKeepsTracking() {
	reservation := s.newReservation()
	s.tracker.AddReservation(reservation)

	now := reservation.EndDate
	s.store.EXPECT().ArchiveReservation(gomock.Any(), reservation.ID, now, true, true).
		Return(errors.New("db down"))

	s.tracker.OnTick(s.ctx, now)

	// Still tracked so the next sweep retries.
	_, ok := s.tracker.Tracked(reservation.ID)
	s.True(ok)

	later := now.Add(time.Minute)
	s.store.EXPECT().ArchiveReservation(gomock.Any(), reservation.ID, later, true, true).Return(nil)
	s.tracker.OnTick(s.ctx, later)

	_, ok = s.tracker.Tracked(reservation.ID)
	s.False(ok)
}

func (s *ReservationTrackerSuite) TestAddReservationToHistory() {
	s.Run("claim path keeps the copy unavailable", func() {
		reservation := s.newReservation()
		s.tracker.AddReservation(reservation)

		closedAt := s.begin.Add(time.Hour)
		s.store.EXPECT().ArchiveReservation(gomock.Any(), reservation.ID, closedAt, false, false).Return(nil)

		s.Require().NoError(s.tracker.AddReservationToHistory(s.ctx, reservation.ID, closedAt))

		_, ok := s.tracker.Tracked(reservation.ID)
		s.False(ok)
	})

	s.Run("archive failure leaves the reservation tracked", func() {
		reservation := s.newReservation()
		s.tracker.AddReservation(reservation)

		closedAt := s.begin.Add(time.Hour)
		s.store.EXPECT().ArchiveReservation(gomock.Any(), reservation.ID, closedAt, false, false).
			Return(errors.New("db down"))

		s.Require().Error(s.tracker.AddReservationToHistory(s.ctx, reservation.ID, closedAt))

		_, ok := s.tracker.Tracked(reservation.ID)
		s.True(ok)
	})
}

func (s *ReservationTrackerSuite) TestRemoveReservation() {
	reservation := s.newReservation()
	s.tracker.AddReservation(reservation)

	s.True(s.tracker.RemoveReservation(reservation.ID))
	s.False(s.tracker.RemoveReservation(reservation.ID))

	// Untracked reservations never expire.
	s.tracker.OnTick(s.ctx, reservation.EndDate.Add(100*time.Hour))
}
