// Package postgres persists circulation records in PostgreSQL via
// database/sql and lib/pq. Archival transitions run in a single
// transaction so the active->archive move, the copy release, and the two
// history appends land as one unit.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"libris/internal/circulation/models"
	id "libris/pkg/domain"
	"libris/pkg/platform/sentinel"
	platformtx "libris/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Store implements ports.RecordStore.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the ambient transaction when the context carries one, so a
// caller can group several record writes into a single commit. The archive
// methods manage their own transactions and do not go through here.
func (s *Store) q(ctx context.Context) querier {
	if ambient, ok := platformtx.From(ctx); ok {
		return ambient
	}
	return s.db
}

// EnsureSchema applies the idempotent schema. Used by dev mode and the
// integration tests; production deployments run migrations out of band.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) GetRental(ctx context.Context, rentalID id.RentalID) (*models.Rental, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, profile_id, copy_id, begin_date, end_date, renewals, penalty_charge
		FROM rentals WHERE id = $1`,
		uuid.UUID(rentalID),
	)
	return scanRental(row)
}

func (s *Store) CreateRental(ctx context.Context, rental *models.Rental) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO rentals (id, profile_id, copy_id, begin_date, end_date, renewals, penalty_charge)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(rental.ID), uuid.UUID(rental.ProfileID), uuid.UUID(rental.CopyID),
		rental.BeginDate, rental.EndDate, rental.Renewals, nullInt64(rental.PenaltyCharge),
	)
	if err != nil {
		return fmt.Errorf("create rental: %w", err)
	}
	return nil
}

// UpdateRentalTerm moves a rental onto a fresh cycle. Any persisted
// penalty belongs to the superseded cycle, so it is cleared in the same
// statement; a tick sweep racing the renewal may otherwise land a charge
// the new term never accrued.
func (s *Store) UpdateRentalTerm(ctx context.Context, rentalID id.RentalID, endDate time.Time, renewals int) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE rentals SET end_date = $2, renewals = $3, penalty_charge = NULL WHERE id = $1`,
		uuid.UUID(rentalID), endDate, renewals,
	)
	if err != nil {
		return fmt.Errorf("update rental term: %w", err)
	}
	return requireRow(res)
}

func (s *Store) SetPenaltyCharge(ctx context.Context, rentalID id.RentalID, amount int64) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE rentals SET penalty_charge = $2 WHERE id = $1`,
		uuid.UUID(rentalID), amount,
	)
	if err != nil {
		return fmt.Errorf("set penalty charge: %w", err)
	}
	return requireRow(res)
}

func (s *Store) ClearPenaltyCharge(ctx context.Context, rentalID id.RentalID) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE rentals SET penalty_charge = NULL WHERE id = $1`,
		uuid.UUID(rentalID),
	)
	if err != nil {
		return fmt.Errorf("clear penalty charge: %w", err)
	}
	return requireRow(res)
}

func (s *Store) ArchiveRental(ctx context.Context, rentalID id.RentalID, returnedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive rental: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT id, profile_id, copy_id, begin_date, end_date, renewals, penalty_charge
		FROM rentals WHERE id = $1 FOR UPDATE`,
		uuid.UUID(rentalID),
	)
	rental, err := scanRental(row)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO archived_rentals (rental_id, profile_id, copy_id, begin_date, end_date, returned_at, penalty_charge)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(rental.ID), uuid.UUID(rental.ProfileID), uuid.UUID(rental.CopyID),
		rental.BeginDate, rental.EndDate, returnedAt, nullInt64(rental.PenaltyCharge),
	); err != nil {
		return fmt.Errorf("insert archived rental: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, uuid.UUID(rental.ID)); err != nil {
		return fmt.Errorf("delete active rental: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE copies SET available = TRUE WHERE id = $1`,
		uuid.UUID(rental.CopyID),
	); err != nil {
		return fmt.Errorf("release copy: %w", err)
	}

	if err := appendHistory(ctx, tx, rental.CopyID, rental.ProfileID, uuid.UUID(rental.ID), "rental", returnedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive rental: %w", err)
	}
	return nil
}

func (s *Store) ListActiveRentals(ctx context.Context) ([]*models.Rental, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, profile_id, copy_id, begin_date, end_date, renewals, penalty_charge
		FROM rentals`)
	if err != nil {
		return nil, fmt.Errorf("list active rentals: %w", err)
	}
	defer rows.Close()

	var out []*models.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rental)
	}
	return out, rows.Err()
}

func (s *Store) GetReservation(ctx context.Context, reservationID id.ReservationID) (*models.Reservation, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, profile_id, copy_id, begin_date, end_date
		FROM reservations WHERE id = $1`,
		uuid.UUID(reservationID),
	)
	return scanReservation(row)
}

func (s *Store) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO reservations (id, profile_id, copy_id, begin_date, end_date)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(reservation.ID), uuid.UUID(reservation.ProfileID), uuid.UUID(reservation.CopyID),
		reservation.BeginDate, reservation.EndDate,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (s *Store) ArchiveReservation(ctx context.Context, reservationID id.ReservationID, closedAt time.Time, expired, releaseCopy bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive reservation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT id, profile_id, copy_id, begin_date, end_date
		FROM reservations WHERE id = $1 FOR UPDATE`,
		uuid.UUID(reservationID),
	)
	reservation, err := scanReservation(row)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO archived_reservations (reservation_id, profile_id, copy_id, begin_date, end_date, closed_at, expired)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(reservation.ID), uuid.UUID(reservation.ProfileID), uuid.UUID(reservation.CopyID),
		reservation.BeginDate, reservation.EndDate, closedAt, expired,
	); err != nil {
		return fmt.Errorf("insert archived reservation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, uuid.UUID(reservation.ID)); err != nil {
		return fmt.Errorf("delete active reservation: %w", err)
	}

	if releaseCopy {
		if _, err := tx.ExecContext(ctx, `
			UPDATE copies SET available = TRUE WHERE id = $1`,
			uuid.UUID(reservation.CopyID),
		); err != nil {
			return fmt.Errorf("release copy: %w", err)
		}
	}

	if err := appendHistory(ctx, tx, reservation.CopyID, reservation.ProfileID, uuid.UUID(reservation.ID), "reservation", closedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive reservation: %w", err)
	}
	return nil
}

func (s *Store) ListActiveReservations(ctx context.Context) ([]*models.Reservation, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, profile_id, copy_id, begin_date, end_date
		FROM reservations`)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	defer rows.Close()

	var out []*models.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reservation)
	}
	return out, rows.Err()
}

func (s *Store) GetCopy(ctx context.Context, copyID id.CopyID) (*models.Copy, error) {
	var copyRec models.Copy
	var rawID uuid.UUID
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, title, available FROM copies WHERE id = $1`,
		uuid.UUID(copyID),
	).Scan(&rawID, &copyRec.Title, &copyRec.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get copy: %w", err)
	}
	copyRec.ID = id.CopyID(rawID)
	return &copyRec, nil
}

func (s *Store) SetCopyAvailable(ctx context.Context, copyID id.CopyID, available bool) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE copies SET available = $2 WHERE id = $1`,
		uuid.UUID(copyID), available,
	)
	if err != nil {
		return fmt.Errorf("set copy availability: %w", err)
	}
	return requireRow(res)
}

func (s *Store) GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	var profile models.Profile
	var rawID uuid.UUID
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, email, name FROM profiles WHERE id = $1`,
		uuid.UUID(profileID),
	).Scan(&rawID, &profile.Email, &profile.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	profile.ID = id.ProfileID(rawID)
	return &profile, nil
}

// SeedCopy and SeedProfile are upserts used by dev mode and tests.
func (s *Store) SeedCopy(ctx context.Context, copyRec models.Copy) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO copies (id, title, available) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, available = EXCLUDED.available`,
		uuid.UUID(copyRec.ID), copyRec.Title, copyRec.Available,
	)
	if err != nil {
		return fmt.Errorf("seed copy: %w", err)
	}
	return nil
}

func (s *Store) SeedProfile(ctx context.Context, profile models.Profile) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO profiles (id, email, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name`,
		uuid.UUID(profile.ID), profile.Email, profile.Name,
	)
	if err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*models.Rental, error) {
	var rental models.Rental
	var rentalID, profileID, copyID uuid.UUID
	var penalty sql.NullInt64
	err := row.Scan(&rentalID, &profileID, &copyID, &rental.BeginDate, &rental.EndDate, &rental.Renewals, &penalty)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan rental: %w", err)
	}
	rental.ID = id.RentalID(rentalID)
	rental.ProfileID = id.ProfileID(profileID)
	rental.CopyID = id.CopyID(copyID)
	if penalty.Valid {
		rental.PenaltyCharge = &penalty.Int64
	}
	return &rental, nil
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var reservation models.Reservation
	var reservationID, profileID, copyID uuid.UUID
	err := row.Scan(&reservationID, &profileID, &copyID, &reservation.BeginDate, &reservation.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	reservation.ID = id.ReservationID(reservationID)
	reservation.ProfileID = id.ProfileID(profileID)
	reservation.CopyID = id.CopyID(copyID)
	return &reservation, nil
}

func appendHistory(ctx context.Context, tx *sql.Tx, copyID id.CopyID, profileID id.ProfileID, entryID uuid.UUID, kind string, at time.Time) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO copy_history (copy_id, entry_id, entry_kind, created_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.UUID(copyID), entryID, kind, at,
	); err != nil {
		return fmt.Errorf("append copy history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profile_history (profile_id, entry_id, entry_kind, created_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.UUID(profileID), entryID, kind, at,
	); err != nil {
		return fmt.Errorf("append profile history: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
