// Package tracker contains the time-signal subscribers: penalty accrual for
// rentals and expiry for reservations. Both react synchronously to
// circulation calls (add/renew/return) and independently to ticks.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"libris/internal/circulation/metrics"
	"libris/internal/circulation/models"
	"libris/internal/circulation/ports"
	"libris/internal/circulation/registry"
	id "libris/pkg/domain"
	"libris/pkg/platform/sentinel"
)

const day = 24 * time.Hour

// PenaltyTracker tracks active rentals against wall-clock time, persists
// overdue charges, and sends the one-shot overdue notification per cycle.
type PenaltyTracker struct {
	registry   *registry.RentalRegistry
	store      ports.RecordStore
	notifier   ports.Notifier
	ratePerDay int64
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type PenaltyOption func(*PenaltyTracker)

func WithPenaltyLogger(logger *slog.Logger) PenaltyOption {
	return func(t *PenaltyTracker) {
		t.logger = logger
	}
}

func WithPenaltyMetrics(m *metrics.Metrics) PenaltyOption {
	return func(t *PenaltyTracker) {
		t.metrics = m
	}
}

func NewPenaltyTracker(reg *registry.RentalRegistry, store ports.RecordStore, notifier ports.Notifier, ratePerDay int64, opts ...PenaltyOption) (*PenaltyTracker, error) {
	if reg == nil {
		return nil, fmt.Errorf("rental registry is required")
	}
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if ratePerDay <= 0 {
		return nil, fmt.Errorf("rate per day must be positive")
	}

	t := &PenaltyTracker{
		registry:   reg,
		store:      store,
		notifier:   notifier,
		ratePerDay: ratePerDay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// AddRental begins tracking a freshly persisted rental. A duplicate id is
// rejected and logged; the existing entry keeps its cycle state.
func (t *PenaltyTracker) AddRental(rental *models.Rental) {
	added := t.registry.Add(models.TrackedRental{
		ID:        rental.ID,
		ProfileID: rental.ProfileID,
		CopyID:    rental.CopyID,
		BeginDate: rental.BeginDate,
		EndDate:   rental.EndDate,
		Renewals:  rental.Renewals,
	})
	if !added {
		t.logger.Warn("rental already tracked, keeping existing entry", "rental_id", rental.ID)
	}
}

// RenewalRental applies a renewal as a compare-and-swap on the tracked end
// date. False means the id is untracked or the expected end date is stale;
// the caller must treat that as a conflict.
func (t *PenaltyTracker) RenewalRental(rentalID id.RentalID, expectedOldEnd, newEnd time.Time) bool {
	return t.registry.Renew(rentalID, expectedOldEnd, newEnd)
}

// ReturnOfItem stops tracking a rental. It performs no persistence or
// notification; archival is the caller's concern. True means the id was
// genuinely being tracked.
func (t *PenaltyTracker) ReturnOfItem(rentalID id.RentalID) bool {
	return t.registry.Remove(rentalID)
}

// Tracked exposes the current tracked state of a rental.
func (t *PenaltyTracker) Tracked(rentalID id.RentalID) (models.TrackedRental, bool) {
	return t.registry.Get(rentalID)
}

// OnTick sweeps the registry once. For every rental at or past its end
// date it persists the recomputed charge and, once per cycle, sends the
// overdue notification. The crossing is inclusive: at now == endDate the
// charge equals exactly one day's rate.
func (t *PenaltyTracker) OnTick(ctx context.Context, now time.Time) {
	for _, tracked := range t.registry.Snapshot() {
		if now.Before(tracked.EndDate) {
			continue
		}

		overdueUnits := int64(now.Sub(tracked.EndDate)/day) + 1
		charge := overdueUnits * t.ratePerDay

		if err := t.store.SetPenaltyCharge(ctx, tracked.ID, charge); err != nil {
			// Flags stay untouched so the next tick retries both the
			// charge and the notification.
			t.logger.Error("failed to persist penalty charge",
				"rental_id", tracked.ID,
				"charge", charge,
				"error", err,
			)
			continue
		}
		if t.metrics != nil && !tracked.PenaltyAccrued {
			t.metrics.PenaltiesCharged.Inc()
		}

		notified := false
		if !tracked.NotifiedOverdue {
			t.notifyOverdue(ctx, tracked, charge)
			// At-most-once: a send failure is swallowed, never retried.
			notified = true
		}

		if !t.registry.MarkCharged(tracked.ID, tracked.EndDate, notified) {
			t.compensateStaleCharge(ctx, tracked)
		}
	}
}

// compensateStaleCharge runs when MarkCharged rejected the write: the cycle
// this sweep charged no longer exists. If a renewal superseded it the charge
// just persisted belongs to the old term and must be cleared, or the renewed
// rental's eventual on-time return would wrongly defer to pending payment.
// If the rental was archived meanwhile the clear finds no row, which is fine.
func (t *PenaltyTracker) compensateStaleCharge(ctx context.Context, stale models.TrackedRental) {
	if current, exists := t.registry.Get(stale.ID); exists && current.PenaltyAccrued {
		// The new cycle already accrued its own charge; leave it alone.
		return
	}
	if err := t.store.ClearPenaltyCharge(ctx, stale.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return
		}
		t.logger.Error("failed to clear superseded penalty charge",
			"rental_id", stale.ID,
			"error", err,
		)
		return
	}
	t.logger.Warn("cleared penalty charge persisted against a superseded cycle", "rental_id", stale.ID)
}

func (t *PenaltyTracker) notifyOverdue(ctx context.Context, tracked models.TrackedRental, charge int64) {
	profile, err := t.store.GetProfile(ctx, tracked.ProfileID)
	if err != nil {
		t.logger.Warn("overdue notification skipped, profile lookup failed",
			"rental_id", tracked.ID,
			"profile_id", tracked.ProfileID,
			"error", err,
		)
		return
	}

	subject := "Your rental is overdue"
	body := fmt.Sprintf(
		"Rental %s was due on %s. The accrued penalty is currently %d. Please return the item and settle the penalty.",
		tracked.ID, tracked.EndDate.Format("2006-01-02"), charge,
	)
	if err := t.notifier.Send(ctx, profile.Email, subject, body); err != nil {
		t.logger.Warn("overdue notification failed",
			"rental_id", tracked.ID,
			"recipient", profile.Email,
			"error", err,
		)
		return
	}
	if t.metrics != nil {
		t.metrics.OverdueNotifications.Inc()
	}
	t.logger.Info("overdue notification sent", "rental_id", tracked.ID, "recipient", profile.Email)
}
