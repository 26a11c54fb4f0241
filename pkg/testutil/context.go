package testutil

import (
	"context"
	"net/http"

	"libris/internal/platform/middleware"
	id "libris/pkg/domain"
)

// WithProfileID adds a profile ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the profileID is not a valid UUID, it will not be added to the context.
func WithProfileID(req *http.Request, profileID string) *http.Request {
	if parsed, err := id.ParseProfileID(profileID); err == nil {
		ctx := context.WithValue(req.Context(), middleware.ContextKeyProfileID, parsed)
		return req.WithContext(ctx)
	}
	return req
}

// WithRequestID adds a request ID to the request context, simulating the
// request-id middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyRequestID, requestID)
	return req.WithContext(ctx)
}
