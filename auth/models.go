package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is the account's resolved role
type Role = string

const (
	// RoleUnspecified is the role of a fresh sign-up before profile creation
	RoleUnspecified Role = "UNSPECIFIED"
	// RoleUser is a buyer account
	RoleUser Role = "USER"
	// RoleVendor is a seller account
	RoleVendor Role = "VENDOR"
	// RoleAdmin is a marketplace operator
	RoleAdmin Role = "ADMIN"
	// RoleSuperAdmin is an operator with full control
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsValidRole checks the role against the predefined set
func IsValidRole(r Role) bool {
	switch r {
	case RoleUnspecified, RoleUser, RoleVendor, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, IsValidRole(r)
}

// TokenClass tags a credential with the purpose it was minted for.
type TokenClass = string

const (
	TokenClassAccess        TokenClass = "access"
	TokenClassVerifyEmail   TokenClass = "verify-email"
	TokenClassResetPassword TokenClass = "reset-password"
)

// OtpPurpose binds a one-time passcode to the flow that issued it.
type OtpPurpose = string

const (
	OtpPurposeVerifyEmail   OtpPurpose = "VERIFY_EMAIL"
	OtpPurposeResetPassword OtpPurpose = "RESET_PASSWORD"
)

// IsValidOtpPurpose checks the purpose against the predefined set
func IsValidOtpPurpose(p OtpPurpose) bool {
	return p == OtpPurposeVerifyEmail || p == OtpPurposeResetPassword
}

// Auth is the identity model
type Auth struct {
	bun.BaseModel `bun:"table:auths,alias:ath"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          Role       `bun:"role,notnull" json:"role,omitempty"`
	IsVerified    bool       `bun:"is_verified" json:"is_verified"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Sanitized returns a copy safe to attach to a request or response:
// the password hash never travels past the store boundary.
func (a *Auth) Sanitized() *Auth {
	if a == nil {
		return nil
	}
	c := *a
	c.PasswordHash = ""
	return &c
}

// NormalizeEmail lower-cases and trims an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Otp is a short code bound to an (identity, purpose) pair. Issuing a new
// code for the same pair overwrites any unconsumed prior code.
type Otp struct {
	bun.BaseModel `bun:"table:otps,alias:otp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AuthID        uuid.UUID  `bun:"auth_id,notnull,type:uuid" json:"auth_id,omitempty"`
	Purpose       OtpPurpose `bun:"purpose,notnull" json:"purpose,omitempty"`
	Code          string     `bun:"code,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
