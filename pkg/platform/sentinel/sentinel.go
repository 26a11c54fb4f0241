package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: rental/reservation/copy/profile does not exist in the store
// - ErrConflict: write lost against a concurrent mutation
// - ErrUnavailable: copy is not available for rent or reservation
// - ErrExpired: settlement token or reservation past its end date
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrExpired     = errors.New("expired")
)
