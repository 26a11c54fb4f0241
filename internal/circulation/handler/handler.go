// Package handler is the thin HTTP layer over the circulation service. It
// shapes requests and responses; all business rules live in the service
// and the settlement coordinator.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"libris/internal/circulation/metrics"
	"libris/internal/circulation/models"
	"libris/internal/circulation/settlement"
	"libris/internal/platform/middleware"
	"libris/internal/transport/http/shared"
	id "libris/pkg/domain"
	dErrors "libris/pkg/domain-errors"
)

// PendingRentalHeader surfaces the rental id a client must settle before
// the return completes.
const PendingRentalHeader = "X-Pending-Rental-Id"

// Service defines the circulation operations the handler depends on.
type Service interface {
	Rent(ctx context.Context, profileID id.ProfileID, copyID id.CopyID) (*models.Rental, error)
	Renew(ctx context.Context, rentalID id.RentalID, profileID id.ProfileID) (*models.Rental, error)
	Return(ctx context.Context, rentalID id.RentalID) (settlement.Result, error)
	ReturnMany(ctx context.Context, rentalIDs []id.RentalID) ([]settlement.Result, error)
	PayThePenalty(ctx context.Context, rentalID id.RentalID) error
	Reserve(ctx context.Context, profileID id.ProfileID, copyID id.CopyID) (*models.Reservation, error)
	CancelReservation(ctx context.Context, reservationID id.ReservationID, profileID id.ProfileID) error
	ClaimReservation(ctx context.Context, reservationID id.ReservationID, profileID id.ProfileID) (*models.Rental, error)
}

// Handler handles the circulation endpoints.
type Handler struct {
	logger       *slog.Logger
	service      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the circulation routes on the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	router.Post("/rentals", h.handleRent)
	router.Post("/rentals/return", h.handleReturnMany)
	router.Post("/rentals/{rentalID}/renew", h.handleRenew)
	router.Post("/rentals/{rentalID}/return", h.handleReturnOne)
	router.Post("/rentals/{rentalID}/pay-the-penalty", h.handlePayThePenalty)
	router.Post("/reservations", h.handleReserve)
	router.Delete("/reservations/{reservationID}", h.handleCancelReservation)
	router.Post("/reservations/{reservationID}/claim", h.handleClaimReservation)

	r.Mount("/circulation", router)
}

func (h *Handler) handleRent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	var req models.RentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	copyID, err := id.ParseCopyID(req.CopyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rental, err := h.service.Rent(ctx, profileID, copyID)
	if err != nil {
		h.writeServiceError(w, r, "rent failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, models.NewRentalResponse(rental))
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	rentalID, err := id.ParseRentalID(chi.URLParam(r, "rentalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rental, err := h.service.Renew(ctx, rentalID, profileID)
	if err != nil {
		h.writeServiceError(w, r, "renewal failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.NewRentalResponse(rental))
}

func (h *Handler) handleReturnOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rentalID, err := id.ParseRentalID(chi.URLParam(r, "rentalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.Return(ctx, rentalID)
	if err != nil {
		h.writeServiceError(w, r, "return failed", err)
		return
	}
	if result.PendingPayment {
		w.Header().Set(PendingRentalHeader, result.RentalID.String())
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReturnMany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.BulkReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.RentalIDs) == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "rental_ids must not be empty"))
		return
	}

	rentalIDs := make([]id.RentalID, 0, len(req.RentalIDs))
	for _, raw := range req.RentalIDs {
		rentalID, err := id.ParseRentalID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		rentalIDs = append(rentalIDs, rentalID)
	}

	results, err := h.service.ReturnMany(ctx, rentalIDs)
	if err != nil {
		h.writeServiceError(w, r, "bulk return failed", err)
		return
	}

	var pending []string
	for _, result := range results {
		if result.PendingPayment {
			pending = append(pending, result.RentalID.String())
		}
	}
	if len(pending) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, models.BulkReturnResponse{PendingPayment: pending})
}

func (h *Handler) handlePayThePenalty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rentalID, err := id.ParseRentalID(chi.URLParam(r, "rentalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.PayThePenalty(ctx, rentalID); err != nil {
		h.writeServiceError(w, r, "settlement failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	var req models.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	copyID, err := id.ParseCopyID(req.CopyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reservation, err := h.service.Reserve(ctx, profileID, copyID)
	if err != nil {
		h.writeServiceError(w, r, "reserve failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, models.NewReservationResponse(reservation))
}

func (h *Handler) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	reservationID, err := id.ParseReservationID(chi.URLParam(r, "reservationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.CancelReservation(ctx, reservationID, profileID); err != nil {
		h.writeServiceError(w, r, "cancel failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClaimReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	reservationID, err := id.ParseReservationID(chi.URLParam(r, "reservationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rental, err := h.service.ClaimReservation(ctx, reservationID, profileID)
	if err != nil {
		h.writeServiceError(w, r, "claim failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, models.NewRentalResponse(rental))
}

func (h *Handler) requireProfile(w http.ResponseWriter, r *http.Request) (id.ProfileID, bool) {
	profileID := middleware.GetProfileID(r.Context())
	if profileID.IsNil() {
		// RequireAuth should have rejected the request already.
		h.logger.ErrorContext(r.Context(), "profile id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.ProfileID{}, false
	}
	return profileID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	code := dErrors.GetCode(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), msg,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(r.Context(), msg,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
