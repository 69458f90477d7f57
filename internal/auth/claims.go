package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields of an access token shown by `orbiter whoami`.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims decodes an access token without verifying its signature. The
// CLI never holds the signing key; the API does the real verification.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if parsed == nil {
		return nil, errors.New("parse access token: empty token")
	}
	return claims, nil
}
