// Package settlement orchestrates the deferred "return with unpaid penalty"
// workflow. A settlement token in the ephemeral store is the idempotency
// ledger: its existence means the item is physically back but the rental
// must stay in the active aggregate until the penalty is paid.
package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/circulation/metrics"
	"libris/internal/circulation/models"
	"libris/internal/circulation/ports"
	id "libris/pkg/domain"
	dErrors "libris/pkg/domain-errors"
	"libris/pkg/platform/sentinel"
)

// RentalTracking is the slice of the penalty tracker the coordinator needs:
// untracking a rental once its return is fully settled.
type RentalTracking interface {
	ReturnOfItem(rentalID id.RentalID) bool
}

// Result reports the outcome of a single return.
type Result struct {
	RentalID id.RentalID
	// PendingPayment is true when the rental was left in the active
	// aggregate and a settlement token was issued.
	PendingPayment bool
}

// Coordinator drives the per-rental settlement state machine:
// Active -> Archived (no penalty) or Active -> PendingPayment -> Settled.
type Coordinator struct {
	store     ports.RecordStore
	ephemeral ports.EphemeralStore
	tracking  RentalTracking
	tokenTTL  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

func New(store ports.RecordStore, ephemeral ports.EphemeralStore, tracking RentalTracking, tokenTTL time.Duration, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if ephemeral == nil {
		return nil, fmt.Errorf("ephemeral store is required")
	}
	if tracking == nil {
		return nil, fmt.Errorf("rental tracking is required")
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive")
	}

	c := &Coordinator{
		store:     store,
		ephemeral: ephemeral,
		tracking:  tracking,
		tokenTTL:  tokenTTL,
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		tracer:    otel.Tracer("libris/settlement"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func tokenKey(rentalID id.RentalID) string {
	return "settlement:" + rentalID.String()
}

// ReturnOne processes the return of a single rental. With no penalty due
// the full archival transition runs synchronously. With a penalty due the
// rental stays active, its copy stays unavailable, and a settlement token
// is written so the caller knows payment is required.
func (c *Coordinator) ReturnOne(ctx context.Context, rentalID id.RentalID) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "settlement.ReturnOne")
	defer span.End()

	rental, err := c.store.GetRental(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Result{}, dErrors.Wrap(err, dErrors.CodeNotFound, "rental not found")
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rental")
	}

	if rental.PenaltyCharge == nil || *rental.PenaltyCharge == 0 {
		if err := c.archive(ctx, rentalID); err != nil {
			return Result{}, err
		}
		return Result{RentalID: rentalID}, nil
	}

	if err := c.issueToken(ctx, rentalID); err != nil {
		return Result{}, err
	}
	return Result{RentalID: rentalID, PendingPayment: true}, nil
}

// ReturnMany processes a batch of returns, one rental at a time. The batch
// is validated up front: duplicate ids are rejected outright and a single
// unknown id aborts the whole batch, in both cases with zero side effects.
func (c *Coordinator) ReturnMany(ctx context.Context, rentalIDs []id.RentalID) ([]Result, error) {
	ctx, span := c.tracer.Start(ctx, "settlement.ReturnMany")
	defer span.End()

	seen := make(map[id.RentalID]struct{}, len(rentalIDs))
	for _, rentalID := range rentalIDs {
		if _, dup := seen[rentalID]; dup {
			return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("duplicate rental id %s in batch", rentalID))
		}
		seen[rentalID] = struct{}{}
	}

	rentals := make([]*models.Rental, 0, len(rentalIDs))
	for _, rentalID := range rentalIDs {
		rental, err := c.store.GetRental(ctx, rentalID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("rental %s not found", rentalID))
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rental")
		}
		rentals = append(rentals, rental)
	}

	results := make([]Result, 0, len(rentals))
	for _, rental := range rentals {
		if rental.PenaltyCharge == nil || *rental.PenaltyCharge == 0 {
			if err := c.archive(ctx, rental.ID); err != nil {
				return results, err
			}
			results = append(results, Result{RentalID: rental.ID})
			continue
		}
		if err := c.issueToken(ctx, rental.ID); err != nil {
			return results, err
		}
		results = append(results, Result{RentalID: rental.ID, PendingPayment: true})
	}
	return results, nil
}

// PayThePenalty completes a deferred return. The atomic token take gates
// the archival: the first caller to delete the token archives, any other
// caller observes "not found" — which also covers rentals that never owed
// anything and rentals already settled.
func (c *Coordinator) PayThePenalty(ctx context.Context, rentalID id.RentalID) error {
	ctx, span := c.tracer.Start(ctx, "settlement.PayThePenalty")
	defer span.End()

	taken, err := c.ephemeral.TakeAndDelete(ctx, tokenKey(rentalID))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to take settlement token")
	}
	if !taken {
		return dErrors.New(dErrors.CodeNotFound, "no settlement pending for rental")
	}

	if err := c.archive(ctx, rentalID); err != nil {
		// The token was consumed but the archival did not happen; put the
		// token back so the settlement can be retried instead of the
		// rental being stranded.
		if reissueErr := c.issueToken(ctx, rentalID); reissueErr != nil {
			c.logger.Error("failed to re-issue settlement token after archival failure",
				"rental_id", rentalID,
				"error", reissueErr,
			)
		}
		return err
	}

	if c.metrics != nil {
		c.metrics.SettlementsCompleted.Inc()
	}
	c.logger.Info("settlement completed", "rental_id", rentalID)
	return nil
}

// PendingSettlement reports whether a settlement token currently exists
// for the rental.
func (c *Coordinator) PendingSettlement(ctx context.Context, rentalID id.RentalID) (bool, error) {
	exists, err := c.ephemeral.Exists(ctx, tokenKey(rentalID))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check settlement token")
	}
	return exists, nil
}

// archive runs the full archival transition and unconditionally stops
// tracking the rental afterwards.
func (c *Coordinator) archive(ctx context.Context, rentalID id.RentalID) error {
	if err := c.store.ArchiveRental(ctx, rentalID, c.clock.Now()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to archive rental")
	}
	c.tracking.ReturnOfItem(rentalID)
	return nil
}

// issueToken writes a fresh settlement token with the full TTL. Issuing is
// idempotent: returning an already-pending rental again simply refreshes
// the token, which is also how an abandoned (TTL-lapsed) settlement is
// recovered on the next return attempt.
func (c *Coordinator) issueToken(ctx context.Context, rentalID id.RentalID) error {
	now := c.clock.Now()
	token := models.SettlementToken{
		RentalID:  rentalID,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.tokenTTL),
	}
	value, err := json.Marshal(token)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode settlement token")
	}
	if err := c.ephemeral.Set(ctx, tokenKey(rentalID), string(value), c.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write settlement token")
	}
	if c.metrics != nil {
		c.metrics.SettlementsPending.Inc()
	}
	c.logger.Info("settlement pending", "rental_id", rentalID, "expires_at", token.ExpiresAt)
	return nil
}
