// Package auth provides JWT token issuance/validation and password hashing.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Claims are the validated contents of an access token.
type Claims struct {
	UserID uuid.UUID
}

// JWTService issues and validates access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies the token and returns its claims.
	// Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}
