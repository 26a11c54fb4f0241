package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "libris/pkg/domain"
)

// JWTValidator validates bearer tokens for the circulation endpoints.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the identity the circulation layer needs: which
// profile the request acts on behalf of.
type JWTClaims struct {
	ProfileID id.ProfileID
}

type contextKeyProfileID struct{}

// ContextKeyProfileID is exported for test helpers that simulate the auth
// middleware.
var ContextKeyProfileID = contextKeyProfileID{}

// GetProfileID retrieves the authenticated profile id from the context.
func GetProfileID(ctx context.Context) id.ProfileID {
	profileID, ok := ctx.Value(ContextKeyProfileID).(id.ProfileID)
	if !ok {
		return id.ProfileID{}
	}
	return profileID
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated profile id in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyProfileID, claims.ProfileID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
