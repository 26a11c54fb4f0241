//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"libris/internal/circulation/models"
	"libris/internal/circulation/store/postgres"
	id "libris/pkg/domain"
	"libris/pkg/platform/sentinel"
	platformtx "libris/pkg/platform/tx"
	"libris/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.postgres.Terminate(s.ctx)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx,
		"copy_history", "profile_history",
		"archived_rentals", "archived_reservations",
		"rentals", "reservations",
		"copies", "profiles",
	)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedFixtures() (models.Profile, models.Copy) {
	profile := models.Profile{ID: id.ProfileID(uuid.New()), Email: "member@example.org", Name: "Member"}
	copyRec := models.Copy{ID: id.CopyID(uuid.New()), Title: "The Go Programming Language", Available: false}
	s.Require().NoError(s.store.SeedProfile(s.ctx, profile))
	s.Require().NoError(s.store.SeedCopy(s.ctx, copyRec))
	return profile, copyRec
}

func (s *PostgresStoreSuite) newRental() *models.Rental {
	profile, copyRec := s.seedFixtures()
	now := time.Now().UTC().Truncate(time.Microsecond)
	rental := &models.Rental{
		ID:        id.RentalID(uuid.New()),
		ProfileID: profile.ID,
		CopyID:    copyRec.ID,
		BeginDate: now,
		EndDate:   now.Add(30 * 24 * time.Hour),
	}
	s.Require().NoError(s.store.CreateRental(s.ctx, rental))
	return rental
}

func (s *PostgresStoreSuite) TestRentalRoundTrip() {
	rental := s.newRental()

	found, err := s.store.GetRental(s.ctx, rental.ID)
	s.Require().NoError(err)
	s.Equal(rental.ID, found.ID)
	s.True(rental.EndDate.Equal(found.EndDate))
	s.Nil(found.PenaltyCharge)

	_, err = s.store.GetRental(s.ctx, id.RentalID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateRentalTerm() {
	rental := s.newRental()
	newEnd := rental.EndDate.Add(30 * 24 * time.Hour)

	// A charge from the old cycle must not survive onto the fresh term.
	s.Require().NoError(s.store.SetPenaltyCharge(s.ctx, rental.ID, 100))
	s.Require().NoError(s.store.UpdateRentalTerm(s.ctx, rental.ID, newEnd, 1))

	found, err := s.store.GetRental(s.ctx, rental.ID)
	s.Require().NoError(err)
	s.True(newEnd.Equal(found.EndDate))
	s.Equal(1, found.Renewals)
	s.Nil(found.PenaltyCharge)

	s.ErrorIs(s.store.UpdateRentalTerm(s.ctx, id.RentalID(uuid.New()), newEnd, 1), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSetPenaltyCharge() {
	rental := s.newRental()

	s.Require().NoError(s.store.SetPenaltyCharge(s.ctx, rental.ID, 300))
	found, err := s.store.GetRental(s.ctx, rental.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.PenaltyCharge)
	s.EqualValues(300, *found.PenaltyCharge)

	s.Require().NoError(s.store.SetPenaltyCharge(s.ctx, rental.ID, 500))
	found, err = s.store.GetRental(s.ctx, rental.ID)
	s.Require().NoError(err)
	s.EqualValues(500, *found.PenaltyCharge)
}

func (s *PostgresStoreSuite) TestClearPenaltyCharge() {
	rental := s.newRental()

	s.Require().NoError(s.store.SetPenaltyCharge(s.ctx, rental.ID, 300))
	s.Require().NoError(s.store.ClearPenaltyCharge(s.ctx, rental.ID))

	found, err := s.store.GetRental(s.ctx, rental.ID)
	s.Require().NoError(err)
	s.Nil(found.PenaltyCharge)

	s.ErrorIs(s.store.ClearPenaltyCharge(s.ctx, id.RentalID(uuid.New())), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestArchiveRentalTransition() {
	rental := s.newRental()
	s.Require().NoError(s.store.SetPenaltyCharge(s.ctx, rental.ID, 200))

	returnedAt := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.ArchiveRental(s.ctx, rental.ID, returnedAt))

	// Gone from the active aggregate.
	_, err := s.store.GetRental(s.ctx, rental.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	// Copy released.
	copyRec, err := s.store.GetCopy(s.ctx, rental.CopyID)
	s.Require().NoError(err)
	s.True(copyRec.Available)

	// Archive row with the final charge.
	var charge int64
	err = s.postgres.DB.QueryRowContext(s.ctx,
		`SELECT penalty_charge FROM archived_rentals WHERE rental_id = $1`,
		uuid.UUID(rental.ID)).Scan(&charge)
	s.Require().NoError(err)
	s.EqualValues(200, charge)

	// One history entry each for the copy and the profile.
	var copyEntries, profileEntries int
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		`SELECT count(*) FROM copy_history WHERE copy_id = $1`,
		uuid.UUID(rental.CopyID)).Scan(&copyEntries))
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		`SELECT count(*) FROM profile_history WHERE profile_id = $1`,
		uuid.UUID(rental.ProfileID)).Scan(&profileEntries))
	s.Equal(1, copyEntries)
	s.Equal(1, profileEntries)

	// A second archive attempt finds no active rental.
	s.ErrorIs(s.store.ArchiveRental(s.ctx, rental.ID, returnedAt), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestReservationLifecycle() {
	profile, copyRec := s.seedFixtures()
	now := time.Now().UTC().Truncate(time.Microsecond)

	reservation := &models.Reservation{
		ID:        id.ReservationID(uuid.New()),
		ProfileID: profile.ID,
		CopyID:    copyRec.ID,
		BeginDate: now,
		EndDate:   now.Add(72 * time.Hour),
	}
	s.Require().NoError(s.store.CreateReservation(s.ctx, reservation))

	found, err := s.store.GetReservation(s.ctx, reservation.ID)
	s.Require().NoError(err)
	s.True(reservation.EndDate.Equal(found.EndDate))

	s.Run("expiry archival releases the copy", func() {
		closedAt := reservation.EndDate
		s.Require().NoError(s.store.ArchiveReservation(s.ctx, reservation.ID, closedAt, true, true))

		_, err := s.store.GetReservation(s.ctx, reservation.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)

		var expired bool
		s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
			`SELECT expired FROM archived_reservations WHERE reservation_id = $1`,
			uuid.UUID(reservation.ID)).Scan(&expired))
		s.True(expired)

		got, err := s.store.GetCopy(s.ctx, copyRec.ID)
		s.Require().NoError(err)
		s.True(got.Available)
	})
}

func (s *PostgresStoreSuite) TestArchiveReservation_ClaimKeepsCopyUnavailable() {
	profile, copyRec := s.seedFixtures()
	now := time.Now().UTC().Truncate(time.Microsecond)

	reservation := &models.Reservation{
		ID:        id.ReservationID(uuid.New()),
		ProfileID: profile.ID,
		CopyID:    copyRec.ID,
		BeginDate: now,
		EndDate:   now.Add(72 * time.Hour),
	}
	s.Require().NoError(s.store.CreateReservation(s.ctx, reservation))

	s.Require().NoError(s.store.ArchiveReservation(s.ctx, reservation.ID, now.Add(time.Hour), false, false))

	got, err := s.store.GetCopy(s.ctx, copyRec.ID)
	s.Require().NoError(err)
	s.False(got.Available)
}

func (s *PostgresStoreSuite) TestListActive() {
	s.newRental()
	s.newRental()

	rentals, err := s.store.ListActiveRentals(s.ctx)
	s.Require().NoError(err)
	s.Len(rentals, 2)

	reservations, err := s.store.ListActiveReservations(s.ctx)
	s.Require().NoError(err)
	s.Empty(reservations)
}

func (s *PostgresStoreSuite) TestAmbientTransactionRollback() {
	rental := s.newRental()

	dbtx, err := s.postgres.DB.BeginTx(s.ctx, nil)
	s.Require().NoError(err)

	txCtx := platformtx.WithTx(s.ctx, dbtx)
	s.Require().NoError(s.store.SetPenaltyCharge(txCtx, rental.ID, 700))
	s.Require().NoError(dbtx.Rollback())

	found, err := s.store.GetRental(s.ctx, rental.ID)
	s.Require().NoError(err)
	s.Nil(found.PenaltyCharge, "rolled-back write must not be visible")
}
