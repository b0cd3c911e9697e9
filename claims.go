package marketplace

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the identity claims a caller asks TokenService to sign
type TokenClaims struct {
	Subject string
	Email   string
	Role    string
}

// SessionClaims is the signed claim set carried by the session cookie
type SessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	UserRole string `json:"role,omitempty"`
}

// UserID returns the subject claim
func (c *SessionClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Role returns the role claim, empty for ordinary users
func (c *SessionClaims) Role() string {
	return c.UserRole
}

// IsAdmin checks the embedded role claim only
func (c *SessionClaims) IsAdmin() bool {
	return c.UserRole == RoleAdmin
}

// Identity returns the claims without the registered fields
func (c *SessionClaims) Identity() TokenClaims {
	return TokenClaims{
		Subject: c.UserID(),
		Email:   c.Email,
		Role:    c.UserRole,
	}
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
