package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the typed JWT the platform's auth service issues to
// storefront clients. This backend only verifies tokens, it never mints them
// for real users.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Locale string    `json:"locale,omitempty"`
	jwt.RegisteredClaims
}
