package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the structured claim set carried by every credential.
// The subject is the identity's email; Class tags what the token may be
// presented for.
type TokenClaims struct {
	jwt.RegisteredClaims
	Class TokenClass `json:"cls,omitempty"`
}

// Email returns the identity claim
func (c *TokenClaims) Email() string {
	return c.RegisteredClaims.Subject
}

// TokenClass returns the class tag
func (c *TokenClaims) TokenClass() TokenClass {
	return c.Class
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
