package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"libris/internal/circulation/metrics"
	"libris/internal/circulation/models"
	"libris/internal/circulation/ports"
	"libris/internal/circulation/registry"
	id "libris/pkg/domain"
)

// ReservationExpiryTracker tracks active reservations and closes out the
// ones that were never claimed: the copy goes back to available and the
// reservation moves into the history aggregate.
type ReservationExpiryTracker struct {
	registry *registry.ReservationRegistry
	store    ports.RecordStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type ExpiryOption func(*ReservationExpiryTracker)

func WithExpiryLogger(logger *slog.Logger) ExpiryOption {
	return func(t *ReservationExpiryTracker) {
		t.logger = logger
	}
}

func WithExpiryMetrics(m *metrics.Metrics) ExpiryOption {
	return func(t *ReservationExpiryTracker) {
		t.metrics = m
	}
}

func NewReservationExpiryTracker(reg *registry.ReservationRegistry, store ports.RecordStore, opts ...ExpiryOption) (*ReservationExpiryTracker, error) {
	if reg == nil {
		return nil, fmt.Errorf("reservation registry is required")
	}
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}

	t := &ReservationExpiryTracker{
		registry: reg,
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// AddReservation begins tracking a freshly persisted reservation.
func (t *ReservationExpiryTracker) AddReservation(reservation *models.Reservation) {
	added := t.registry.Add(models.TrackedReservation{
		ID:        reservation.ID,
		ProfileID: reservation.ProfileID,
		CopyID:    reservation.CopyID,
		BeginDate: reservation.BeginDate,
		EndDate:   reservation.EndDate,
	})
	if !added {
		t.logger.Warn("reservation already tracked, keeping existing entry", "reservation_id", reservation.ID)
	}
}

// RemoveReservation stops tracking a reservation. True means it was
// genuinely being tracked.
func (t *ReservationExpiryTracker) RemoveReservation(reservationID id.ReservationID) bool {
	return t.registry.Remove(reservationID)
}

// Tracked exposes the current tracked state of a reservation.
func (t *ReservationExpiryTracker) Tracked(reservationID id.ReservationID) (models.TrackedReservation, bool) {
	return t.registry.Get(reservationID)
}

// AddReservationToHistory closes a claimed reservation: it leaves the
// active registry and moves into the history aggregate without being
// treated as an expiry. The copy stays unavailable because it transitions
// straight into the new rental.
func (t *ReservationExpiryTracker) AddReservationToHistory(ctx context.Context, reservationID id.ReservationID, closedAt time.Time) error {
	if err := t.store.ArchiveReservation(ctx, reservationID, closedAt, false, false); err != nil {
		return err
	}
	t.registry.Remove(reservationID)
	return nil
}

// OnTick sweeps the registry once and expires every reservation at or past
// its end date: release the copy, append the history record, untrack. A
// failed history write leaves the entry tracked so the next tick retries.
func (t *ReservationExpiryTracker) OnTick(ctx context.Context, now time.Time) {
	for _, tracked := range t.registry.Snapshot() {
		if now.Before(tracked.EndDate) {
			continue
		}

		if err := t.store.ArchiveReservation(ctx, tracked.ID, now, true, true); err != nil {
			t.logger.Error("failed to expire reservation",
				"reservation_id", tracked.ID,
				"error", err,
			)
			continue
		}

		t.registry.Remove(tracked.ID)
		if t.metrics != nil {
			t.metrics.ReservationsExpired.Inc()
		}
		t.logger.Info("reservation expired",
			"reservation_id", tracked.ID,
			"copy_id", tracked.CopyID,
		)
	}
}
