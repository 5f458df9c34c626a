package authclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set embedded in the backend's bearer tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Role returns the parsed role claim; RoleNone when absent or unknown.
func (c *TokenClaims) Role() Role {
	if role, ok := ParseRole(c.UserRole); ok {
		return role
	}
	return RoleNone
}

// Expires returns the expiration time; the zero time when the claim is absent.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// HasExpiry reports whether the token carries an exp claim at all.
func (c *TokenClaims) HasExpiry() bool {
	return c.RegisteredClaims.ExpiresAt != nil
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
