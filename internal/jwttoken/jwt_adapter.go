package jwttoken

import (
	"libris/internal/platform/middleware"
	id "libris/pkg/domain"
	dErrors "libris/pkg/domain-errors"
)

// JWTServiceAdapter bridges JWTService to the middleware's validator
// interface, parsing the profile id claim into its typed form.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	profileID, err := id.ParseProfileID(claims.ProfileID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid profile id claim")
	}
	return &middleware.JWTClaims{ProfileID: profileID}, nil
}
