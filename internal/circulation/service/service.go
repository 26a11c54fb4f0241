// Package service orchestrates circulation operations: rent, renew,
// reserve, cancel, claim. Returns and settlements are delegated to the
// settlement coordinator; obligation tracking to the trackers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"libris/internal/circulation/models"
	"libris/internal/circulation/ports"
	"libris/internal/circulation/settlement"
	"libris/internal/circulation/tracker"
	id "libris/pkg/domain"
	dErrors "libris/pkg/domain-errors"
	"libris/pkg/platform/sentinel"
)

// Config carries the numeric circulation policy. The engine applies these
// parameters; it does not decide them.
type Config struct {
	RentalWindow      time.Duration
	ReservationWindow time.Duration
	MaxRenewals       int
}

type Service struct {
	store      ports.RecordStore
	penalties  *tracker.PenaltyTracker
	expiry     *tracker.ReservationExpiryTracker
	settlement *settlement.Coordinator
	clock      clockwork.Clock
	cfg        Config
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func New(store ports.RecordStore, penalties *tracker.PenaltyTracker, expiry *tracker.ReservationExpiryTracker, coordinator *settlement.Coordinator, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if penalties == nil || expiry == nil {
		return nil, fmt.Errorf("trackers are required")
	}
	if coordinator == nil {
		return nil, fmt.Errorf("settlement coordinator is required")
	}
	if cfg.RentalWindow <= 0 || cfg.ReservationWindow <= 0 {
		return nil, fmt.Errorf("circulation windows must be positive")
	}

	s := &Service{
		store:      store,
		penalties:  penalties,
		expiry:     expiry,
		settlement: coordinator,
		clock:      clockwork.NewRealClock(),
		cfg:        cfg,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Rehydrate reloads the registries from the record store so a process
// restart does not lose obligation tracking. Pending-settlement rentals
// are still in the active aggregate and come back tracked, which is
// exactly the state they were in before the restart.
func (s *Service) Rehydrate(ctx context.Context) error {
	rentals, err := s.store.ListActiveRentals(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active rentals")
	}
	for _, rental := range rentals {
		s.penalties.AddRental(rental)
	}

	reservations, err := s.store.ListActiveReservations(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active reservations")
	}
	for _, reservation := range reservations {
		s.expiry.AddReservation(reservation)
	}

	s.logger.Info("registries rehydrated",
		"rentals", len(rentals),
		"reservations", len(reservations),
	)
	return nil
}

// Rent loans an available copy to a profile and starts tracking it.
func (s *Service) Rent(ctx context.Context, profileID id.ProfileID, copyID id.CopyID) (*models.Rental, error) {
	if _, err := s.store.GetProfile(ctx, profileID); err != nil {
		return nil, translateNotFound(err, "profile not found")
	}
	copyRec, err := s.store.GetCopy(ctx, copyID)
	if err != nil {
		return nil, translateNotFound(err, "copy not found")
	}
	if !copyRec.Available {
		return nil, dErrors.New(dErrors.CodeConflict, "copy is not available")
	}

	now := s.clock.Now()
	rental := &models.Rental{
		ID:        id.NewRentalID(),
		ProfileID: profileID,
		CopyID:    copyID,
		BeginDate: now,
		EndDate:   now.Add(s.cfg.RentalWindow),
	}

	if err := s.store.CreateRental(ctx, rental); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create rental")
	}
	if err := s.store.SetCopyAvailable(ctx, copyID, false); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim copy")
	}
	s.penalties.AddRental(rental)

	s.logger.Info("rental created", "rental_id", rental.ID, "profile_id", profileID, "copy_id", copyID)
	return rental, nil
}

// Renew extends a rental by one rental window. The registry CAS is the
// authority on the current cycle: a stale end date or a race with a return
// or a tick surfaces as a conflict, never as a silent double-extension.
func (s *Service) Renew(ctx context.Context, rentalID id.RentalID, profileID id.ProfileID) (*models.Rental, error) {
	rental, err := s.store.GetRental(ctx, rentalID)
	if err != nil {
		return nil, translateNotFound(err, "rental not found")
	}
	if rental.ProfileID != profileID {
		// Not the caller's rental; indistinguishable from absent.
		return nil, dErrors.New(dErrors.CodeNotFound, "rental not found")
	}
	if rental.Renewals >= s.cfg.MaxRenewals {
		return nil, dErrors.New(dErrors.CodeConflict, "renewal limit reached")
	}

	tracked, ok := s.penalties.Tracked(rentalID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeConflict, "rental is not being tracked")
	}
	if tracked.PenaltyAccrued {
		return nil, dErrors.New(dErrors.CodeConflict, "rental has an accrued penalty")
	}

	newEnd := rental.EndDate.Add(s.cfg.RentalWindow)
	if !s.penalties.RenewalRental(rentalID, rental.EndDate, newEnd) {
		return nil, dErrors.New(dErrors.CodeConflict, "renewal lost against a concurrent update")
	}

	if err := s.store.UpdateRentalTerm(ctx, rentalID, newEnd, rental.Renewals+1); err != nil {
		// CAS back so the tracked end date never runs ahead of the store.
		if !s.penalties.RenewalRental(rentalID, newEnd, rental.EndDate) {
			s.logger.Error("failed to roll back tracked renewal", "rental_id", rentalID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist renewal")
	}

	rental.EndDate = newEnd
	rental.Renewals++
	s.logger.Info("rental renewed", "rental_id", rentalID, "end_date", newEnd, "renewals", rental.Renewals)
	return rental, nil
}

// Return processes a single return through the settlement coordinator.
func (s *Service) Return(ctx context.Context, rentalID id.RentalID) (settlement.Result, error) {
	return s.settlement.ReturnOne(ctx, rentalID)
}

// ReturnMany processes a batch of returns.
func (s *Service) ReturnMany(ctx context.Context, rentalIDs []id.RentalID) ([]settlement.Result, error) {
	return s.settlement.ReturnMany(ctx, rentalIDs)
}

// PayThePenalty settles a deferred return.
func (s *Service) PayThePenalty(ctx context.Context, rentalID id.RentalID) error {
	return s.settlement.PayThePenalty(ctx, rentalID)
}

// Reserve places a hold on an available copy.
func (s *Service) Reserve(ctx context.Context, profileID id.ProfileID, copyID id.CopyID) (*models.Reservation, error) {
	if _, err := s.store.GetProfile(ctx, profileID); err != nil {
		return nil, translateNotFound(err, "profile not found")
	}
	copyRec, err := s.store.GetCopy(ctx, copyID)
	if err != nil {
		return nil, translateNotFound(err, "copy not found")
	}
	if !copyRec.Available {
		return nil, dErrors.New(dErrors.CodeConflict, "copy is not available")
	}

	now := s.clock.Now()
	reservation := &models.Reservation{
		ID:        id.NewReservationID(),
		ProfileID: profileID,
		CopyID:    copyID,
		BeginDate: now,
		EndDate:   now.Add(s.cfg.ReservationWindow),
	}

	if err := s.store.CreateReservation(ctx, reservation); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reservation")
	}
	if err := s.store.SetCopyAvailable(ctx, copyID, false); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hold copy")
	}
	s.expiry.AddReservation(reservation)

	s.logger.Info("reservation created", "reservation_id", reservation.ID, "profile_id", profileID, "copy_id", copyID)
	return reservation, nil
}

// CancelReservation closes a reservation before pickup: the copy is
// released and the reservation moves to history as a non-expiry closure.
func (s *Service) CancelReservation(ctx context.Context, reservationID id.ReservationID, profileID id.ProfileID) error {
	reservation, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return translateNotFound(err, "reservation not found")
	}
	if reservation.ProfileID != profileID {
		return dErrors.New(dErrors.CodeNotFound, "reservation not found")
	}

	if err := s.store.ArchiveReservation(ctx, reservationID, s.clock.Now(), false, true); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close reservation")
	}
	s.expiry.RemoveReservation(reservationID)

	s.logger.Info("reservation cancelled", "reservation_id", reservationID)
	return nil
}

// ClaimReservation converts a reservation into a rental: the reservation
// moves to history without being treated as an expiry, the copy stays
// unavailable, and a fresh rental begins on it.
func (s *Service) ClaimReservation(ctx context.Context, reservationID id.ReservationID, profileID id.ProfileID) (*models.Rental, error) {
	reservation, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, translateNotFound(err, "reservation not found")
	}
	if reservation.ProfileID != profileID {
		return nil, dErrors.New(dErrors.CodeNotFound, "reservation not found")
	}

	now := s.clock.Now()
	if err := s.expiry.AddReservationToHistory(ctx, reservationID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to move reservation to history")
	}

	rental := &models.Rental{
		ID:        id.NewRentalID(),
		ProfileID: profileID,
		CopyID:    reservation.CopyID,
		BeginDate: now,
		EndDate:   now.Add(s.cfg.RentalWindow),
	}
	if err := s.store.CreateRental(ctx, rental); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create rental from reservation")
	}
	s.penalties.AddRental(rental)

	s.logger.Info("reservation claimed", "reservation_id", reservationID, "rental_id", rental.ID)
	return rental, nil
}

func translateNotFound(err error, message string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
}
