// Package memory provides in-memory implementations of the circulation
// ports, used by unit tests and by dev mode when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"libris/internal/circulation/models"
	id "libris/pkg/domain"
	"libris/pkg/platform/sentinel"
)

// Store implements ports.RecordStore over plain maps. All methods return
// copies so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	rentals      map[id.RentalID]*models.Rental
	reservations map[id.ReservationID]*models.Reservation
	copies       map[id.CopyID]*models.Copy
	profiles     map[id.ProfileID]*models.Profile

	archivedRentals      map[id.RentalID]*models.ArchivedRental
	archivedReservations map[id.ReservationID]*models.ArchivedReservation
	copyHistory          map[id.CopyID][]string
	profileHistory       map[id.ProfileID][]string
}

func New() *Store {
	return &Store{
		rentals:              make(map[id.RentalID]*models.Rental),
		reservations:         make(map[id.ReservationID]*models.Reservation),
		copies:               make(map[id.CopyID]*models.Copy),
		profiles:             make(map[id.ProfileID]*models.Profile),
		archivedRentals:      make(map[id.RentalID]*models.ArchivedRental),
		archivedReservations: make(map[id.ReservationID]*models.ArchivedReservation),
		copyHistory:          make(map[id.CopyID][]string),
		profileHistory:       make(map[id.ProfileID][]string),
	}
}

func (s *Store) GetRental(_ context.Context, rentalID id.RentalID) (*models.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rental, exists := s.rentals[rentalID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	out := *rental
	return &out, nil
}

func (s *Store) CreateRental(_ context.Context, rental *models.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rentals[rental.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *rental
	s.rentals[rental.ID] = &stored
	return nil
}

// UpdateRentalTerm moves a rental onto a fresh cycle and drops any charge
// persisted against the superseded one.
func (s *Store) UpdateRentalTerm(_ context.Context, rentalID id.RentalID, endDate time.Time, renewals int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rental, exists := s.rentals[rentalID]
	if !exists {
		return sentinel.ErrNotFound
	}
	rental.EndDate = endDate
	rental.Renewals = renewals
	rental.PenaltyCharge = nil
	return nil
}

func (s *Store) SetPenaltyCharge(_ context.Context, rentalID id.RentalID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rental, exists := s.rentals[rentalID]
	if !exists {
		return sentinel.ErrNotFound
	}
	rental.PenaltyCharge = &amount
	return nil
}

func (s *Store) ClearPenaltyCharge(_ context.Context, rentalID id.RentalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rental, exists := s.rentals[rentalID]
	if !exists {
		return sentinel.ErrNotFound
	}
	rental.PenaltyCharge = nil
	return nil
}

func (s *Store) ArchiveRental(_ context.Context, rentalID id.RentalID, returnedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rental, exists := s.rentals[rentalID]
	if !exists {
		return sentinel.ErrNotFound
	}

	archived := &models.ArchivedRental{
		RentalID:      rental.ID,
		ProfileID:     rental.ProfileID,
		CopyID:        rental.CopyID,
		BeginDate:     rental.BeginDate,
		EndDate:       rental.EndDate,
		ReturnedAt:    returnedAt,
		PenaltyCharge: rental.PenaltyCharge,
	}

	delete(s.rentals, rentalID)
	s.archivedRentals[rentalID] = archived
	s.copyHistory[rental.CopyID] = append(s.copyHistory[rental.CopyID], rentalID.String())
	s.profileHistory[rental.ProfileID] = append(s.profileHistory[rental.ProfileID], rentalID.String())
	if copyRec, ok := s.copies[rental.CopyID]; ok {
		copyRec.Available = true
	}
	return nil
}

func (s *Store) ListActiveRentals(_ context.Context) ([]*models.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Rental, 0, len(s.rentals))
	for _, rental := range s.rentals {
		copied := *rental
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) GetReservation(_ context.Context, reservationID id.ReservationID) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, exists := s.reservations[reservationID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	out := *reservation
	return &out, nil
}

func (s *Store) CreateReservation(_ context.Context, reservation *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reservations[reservation.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *reservation
	s.reservations[reservation.ID] = &stored
	return nil
}

func (s *Store) ArchiveReservation(_ context.Context, reservationID id.ReservationID, closedAt time.Time, expired, releaseCopy bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, exists := s.reservations[reservationID]
	if !exists {
		return sentinel.ErrNotFound
	}

	archived := &models.ArchivedReservation{
		ReservationID: reservation.ID,
		ProfileID:     reservation.ProfileID,
		CopyID:        reservation.CopyID,
		BeginDate:     reservation.BeginDate,
		EndDate:       reservation.EndDate,
		ClosedAt:      closedAt,
		Expired:       expired,
	}

	delete(s.reservations, reservationID)
	s.archivedReservations[reservationID] = archived
	if releaseCopy {
		if copyRec, ok := s.copies[reservation.CopyID]; ok {
			copyRec.Available = true
		}
	}
	return nil
}

func (s *Store) ListActiveReservations(_ context.Context) ([]*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Reservation, 0, len(s.reservations))
	for _, reservation := range s.reservations {
		copied := *reservation
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) GetCopy(_ context.Context, copyID id.CopyID) (*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copyRec, exists := s.copies[copyID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	out := *copyRec
	return &out, nil
}

func (s *Store) GetProfile(_ context.Context, profileID id.ProfileID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[profileID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	out := *profile
	return &out, nil
}

// SetCopyAvailable flips availability on a copy. The service uses it when
// a rent or reservation claims a copy.
func (s *Store) SetCopyAvailable(_ context.Context, copyID id.CopyID, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copyRec, exists := s.copies[copyID]
	if !exists {
		return sentinel.ErrNotFound
	}
	copyRec.Available = available
	return nil
}

// SeedCopy and SeedProfile load fixtures for tests and dev mode.
func (s *Store) SeedCopy(copyRec models.Copy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copies[copyRec.ID] = &copyRec
}

func (s *Store) SeedProfile(profile models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = &profile
}

// Inspection helpers for tests.

func (s *Store) ActiveRentalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rentals)
}

func (s *Store) ArchivedRental(rentalID id.RentalID) (*models.ArchivedRental, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	archived, exists := s.archivedRentals[rentalID]
	if !exists {
		return nil, false
	}
	out := *archived
	return &out, true
}

func (s *Store) ArchivedReservation(reservationID id.ReservationID) (*models.ArchivedReservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	archived, exists := s.archivedReservations[reservationID]
	if !exists {
		return nil, false
	}
	out := *archived
	return &out, true
}

func (s *Store) CopyHistory(copyID id.CopyID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.copyHistory[copyID]...)
}

func (s *Store) ProfileHistory(profileID id.ProfileID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.profileHistory[profileID]...)
}
