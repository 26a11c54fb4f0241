package models

// Request and response shapes for the circulation HTTP surface.

type RentRequest struct {
	CopyID string `json:"copy_id"`
}

type ReserveRequest struct {
	CopyID string `json:"copy_id"`
}

type BulkReturnRequest struct {
	RentalIDs []string `json:"rental_ids"`
}

// BulkReturnResponse lists the rentals from the batch that could not be
// archived because a penalty must be settled first.
type BulkReturnResponse struct {
	PendingPayment []string `json:"pending_payment,omitempty"`
}

type RentalResponse struct {
	ID            string `json:"id"`
	ProfileID     string `json:"profile_id"`
	CopyID        string `json:"copy_id"`
	BeginDate     string `json:"begin_date"`
	EndDate       string `json:"end_date"`
	Renewals      int    `json:"renewals"`
	PenaltyCharge *int64 `json:"penalty_charge,omitempty"`
}

type ReservationResponse struct {
	ID        string `json:"id"`
	ProfileID string `json:"profile_id"`
	CopyID    string `json:"copy_id"`
	BeginDate string `json:"begin_date"`
	EndDate   string `json:"end_date"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// NewRentalResponse shapes a rental for the wire.
func NewRentalResponse(r *Rental) RentalResponse {
	return RentalResponse{
		ID:            r.ID.String(),
		ProfileID:     r.ProfileID.String(),
		CopyID:        r.CopyID.String(),
		BeginDate:     r.BeginDate.UTC().Format(timeLayout),
		EndDate:       r.EndDate.UTC().Format(timeLayout),
		Renewals:      r.Renewals,
		PenaltyCharge: r.PenaltyCharge,
	}
}

// NewReservationResponse shapes a reservation for the wire.
func NewReservationResponse(r *Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID.String(),
		ProfileID: r.ProfileID.String(),
		CopyID:    r.CopyID.String(),
		BeginDate: r.BeginDate.UTC().Format(timeLayout),
		EndDate:   r.EndDate.UTC().Format(timeLayout),
	}
}
