package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"libris/internal/circulation/metrics"
	"libris/internal/circulation/models"
	"libris/internal/circulation/settlement"
	"libris/internal/platform/middleware"
	id "libris/pkg/domain"
	dErrors "libris/pkg/domain-errors"
	"libris/pkg/testutil"
)

// stubValidator accepts exactly one token and maps it to a fixed profile.
type stubValidator struct {
	profileID id.ProfileID
}

func (v *stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "valid-token" {
		return nil, fmt.Errorf("unknown token")
	}
	return &middleware.JWTClaims{ProfileID: v.profileID}, nil
}

// stubService returns canned values; each field overrides one operation.
type stubService struct {
	rental      *models.Rental
	reservation *models.Reservation
	result      settlement.Result
	results     []settlement.Result
	err         error
}

func (s *stubService) Rent(context.Context, id.ProfileID, id.CopyID) (*models.Rental, error) {
	return s.rental, s.err
}

func (s *stubService) Renew(context.Context, id.RentalID, id.ProfileID) (*models.Rental, error) {
	return s.rental, s.err
}

func (s *stubService) Return(context.Context, id.RentalID) (settlement.Result, error) {
	return s.result, s.err
}

func (s *stubService) ReturnMany(context.Context, []id.RentalID) ([]settlement.Result, error) {
	return s.results, s.err
}

func (s *stubService) PayThePenalty(context.Context, id.RentalID) error {
	return s.err
}

func (s *stubService) Reserve(context.Context, id.ProfileID, id.CopyID) (*models.Reservation, error) {
	return s.reservation, s.err
}

func (s *stubService) CancelReservation(context.Context, id.ReservationID, id.ProfileID) error {
	return s.err
}

func (s *stubService) ClaimReservation(context.Context, id.ReservationID, id.ProfileID) (*models.Rental, error) {
	return s.rental, s.err
}

type HandlerSuite struct {
	suite.Suite
	service   *stubService
	router    chi.Router
	profileID id.ProfileID
}

func (s *HandlerSuite) SetupTest() {
	s.service = &stubService{}
	s.profileID = id.ProfileID(uuid.New())

	logger := slog.New(slog.DiscardHandler)
	m := metrics.NewWith(prometheus.NewRegistry())
	h := New(s.service, logger, m, &stubValidator{profileID: s.profileID})

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), method, path, body), "valid-token")
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) sampleRental() *models.Rental {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return &models.Rental{
		ID:        id.RentalID(uuid.New()),
		ProfileID: s.profileID,
		CopyID:    id.CopyID(uuid.New()),
		BeginDate: now,
		EndDate:   now.Add(30 * 24 * time.Hour),
	}
}

func (s *HandlerSuite) TestAuthentication() {
	s.Run("rejects a missing bearer token", func() {
		req := testutil.NewRequest(s.T(), http.MethodPost, "/circulation/rentals")
		rec := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("unauthorized", testutil.ErrorField(s.T(), rec))
	})

	s.Run("rejects an invalid bearer token", func() {
		req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, "/circulation/rentals"), "wrong")
		rec := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestRent() {
	s.Run("creates a rental", func() {
		rental := s.sampleRental()
		s.service.rental = rental

		rec := s.request(http.MethodPost, "/circulation/rentals", models.RentRequest{CopyID: rental.CopyID.String()})
		s.Equal(http.StatusCreated, rec.Code)

		resp := testutil.DecodeJSON[models.RentalResponse](s.T(), rec)
		s.Equal(rental.ID.String(), resp.ID)
		s.Equal(rental.CopyID.String(), resp.CopyID)
	})

	s.Run("rejects a malformed copy id", func() {
		rec := s.request(http.MethodPost, "/circulation/rentals", models.RentRequest{CopyID: "not-a-uuid"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("maps a conflict to 409", func() {
		s.service.err = dErrors.New(dErrors.CodeConflict, "copy is not available")
		defer func() { s.service.err = nil }()

		rec := s.request(http.MethodPost, "/circulation/rentals", models.RentRequest{CopyID: uuid.NewString()})
		s.Equal(http.StatusConflict, rec.Code)
	})
}

func (s *HandlerSuite) TestRenew() {
	rental := s.sampleRental()
	rental.Renewals = 1
	s.service.rental = rental

	rec := s.request(http.MethodPost, "/circulation/rentals/"+rental.ID.String()+"/renew", nil)
	s.Equal(http.StatusOK, rec.Code)

	resp := testutil.DecodeJSON[models.RentalResponse](s.T(), rec)
	s.Equal(1, resp.Renewals)
}

func (s *HandlerSuite) TestReturnOne() {
	s.Run("clean return responds 204", func() {
		rentalID := id.RentalID(uuid.New())
		s.service.result = settlement.Result{RentalID: rentalID}

		rec := s.request(http.MethodPost, "/circulation/rentals/"+rentalID.String()+"/return", nil)
		s.Equal(http.StatusNoContent, rec.Code)
		s.Empty(rec.Header().Get(PendingRentalHeader))
	})

	s.Run("pending settlement responds 202 with the rental id", func() {
		rentalID := id.RentalID(uuid.New())
		s.service.result = settlement.Result{RentalID: rentalID, PendingPayment: true}

		rec := s.request(http.MethodPost, "/circulation/rentals/"+rentalID.String()+"/return", nil)
		s.Equal(http.StatusAccepted, rec.Code)
		s.Equal(rentalID.String(), rec.Header().Get(PendingRentalHeader))
	})

	s.Run("unknown rental responds 404", func() {
		s.service.err = dErrors.New(dErrors.CodeNotFound, "rental not found")
		defer func() { s.service.err = nil }()

		rec := s.request(http.MethodPost, "/circulation/rentals/"+uuid.NewString()+"/return", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestReturnMany() {
	s.Run("all-clean batch responds 204", func() {
		ids := []string{uuid.NewString(), uuid.NewString()}
		s.service.results = []settlement.Result{{}, {}}

		rec := s.request(http.MethodPost, "/circulation/rentals/return", models.BulkReturnRequest{RentalIDs: ids})
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("batch with pending settlements responds 202", func() {
		pendingID := id.RentalID(uuid.New())
		s.service.results = []settlement.Result{
			{RentalID: id.RentalID(uuid.New())},
			{RentalID: pendingID, PendingPayment: true},
		}

		rec := s.request(http.MethodPost, "/circulation/rentals/return",
			models.BulkReturnRequest{RentalIDs: []string{uuid.NewString(), pendingID.String()}})
		s.Equal(http.StatusAccepted, rec.Code)

		resp := testutil.DecodeJSON[models.BulkReturnResponse](s.T(), rec)
		s.Equal([]string{pendingID.String()}, resp.PendingPayment)
	})

	s.Run("empty batch responds 400", func() {
		rec := s.request(http.MethodPost, "/circulation/rentals/return", models.BulkReturnRequest{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestPayThePenalty() {
	s.Run("settlement responds 204", func() {
		rec := s.request(http.MethodPost, "/circulation/rentals/"+uuid.NewString()+"/pay-the-penalty", nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("nothing pending responds 404", func() {
		s.service.err = dErrors.New(dErrors.CodeNotFound, "no settlement pending for rental")
		defer func() { s.service.err = nil }()

		rec := s.request(http.MethodPost, "/circulation/rentals/"+uuid.NewString()+"/pay-the-penalty", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestReservations() {
	s.Run("reserve responds 201", func() {
		now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		reservation := &models.Reservation{
			ID:        id.ReservationID(uuid.New()),
			ProfileID: s.profileID,
			CopyID:    id.CopyID(uuid.New()),
			BeginDate: now,
			EndDate:   now.Add(72 * time.Hour),
		}
		s.service.reservation = reservation

		rec := s.request(http.MethodPost, "/circulation/reservations",
			models.ReserveRequest{CopyID: reservation.CopyID.String()})
		s.Equal(http.StatusCreated, rec.Code)

		resp := testutil.DecodeJSON[models.ReservationResponse](s.T(), rec)
		s.Equal(reservation.ID.String(), resp.ID)
	})

	s.Run("cancel responds 204", func() {
		rec := s.request(http.MethodDelete, "/circulation/reservations/"+uuid.NewString(), nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("claim responds 201 with the new rental", func() {
		rental := s.sampleRental()
		s.service.rental = rental

		rec := s.request(http.MethodPost, "/circulation/reservations/"+uuid.NewString()+"/claim", nil)
		s.Equal(http.StatusCreated, rec.Code)

		resp := testutil.DecodeJSON[models.RentalResponse](s.T(), rec)
		s.Equal(rental.ID.String(), resp.ID)
	})
}
