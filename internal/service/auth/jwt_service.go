package auth

import (
	"context"
	"time"
)

// DefaultSubject is the operator the API issues tokens for.
const DefaultSubject = "operator"

// JWTService issues and validates the bearer tokens that guard the HTTP API.
type JWTService interface {
	// GenerateToken creates a signed access token for subject.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken checks the signature and lifetime of tokenString and
	// returns its claims. Expired tokens yield ErrExpiredToken; anything else
	// that fails to verify yields ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a validated token.
type Claims struct {
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	ID        string    `json:"jti"`
}
