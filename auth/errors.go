package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is returned when no identity matches a claim or lookup
var ErrIdentityNotFound = errors.New("User Not Found!", errors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrTokenExpired means the credential was valid but its expiry has passed
var ErrTokenExpired = errors.New("Token Expired!", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed means the credential failed signature or structure checks
var ErrTokenMalformed = errors.New("Invalid Token!", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrMissingCredential means the request carried no usable bearer credential
var ErrMissingCredential = errors.New("Unauthorized!", errors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED")

// ErrForbidden means the credential is valid but class or role checks failed
var ErrForbidden = errors.New("Forbidden!", errors.CategoryAuthz).
	WithTextCode("FORBIDDEN")

// ErrNotVerified means the route requires a verified identity
var ErrNotVerified = errors.New("User Not Verified!", errors.CategoryBadInput).
	WithTextCode("NOT_VERIFIED")

// ErrInvalidOtp covers both a missing OTP record and a code mismatch so the
// response does not reveal which one happened.
var ErrInvalidOtp = errors.New("Invalid OTP!", errors.CategoryBadInput).
	WithTextCode("INVALID_OTP")

// ErrEmailTaken is the duplicate-registration error
var ErrEmailTaken = errors.New("User Already Exists!", errors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN")

// ErrInvalidPassword is returned on a sign-in with a wrong password
var ErrInvalidPassword = errors.New("Invalid Password!", errors.CategoryBadInput).
	WithTextCode("INVALID_PASSWORD")

// ErrMismatchedHashAndPassword is the bcrypt comparison failure
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth)

// ErrNoEmptyString rejects empty inputs to the hasher
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenExpired.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed or mis-signed tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenMalformed.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
