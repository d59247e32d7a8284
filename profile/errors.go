package profile

import "github.com/goliatone/go-errors"

// ErrInvalidRole means the identity has no role picked yet, so there is no
// profile table to read or write.
var ErrInvalidRole = errors.New("Invalid Role!", errors.CategoryBadInput).
	WithTextCode("INVALID_ROLE")

// ErrProfileNotFound means the identity never created its profile
var ErrProfileNotFound = errors.New("Profile Not Found!", errors.CategoryNotFound).
	WithTextCode("PROFILE_NOT_FOUND")

// ErrProfileExists rejects a second create for the same identity
var ErrProfileExists = errors.New("Profile Already Exists!", errors.CategoryConflict).
	WithTextCode("PROFILE_EXISTS")

// ErrInvalidPhone rejects a phone number that fails normalization
var ErrInvalidPhone = errors.New("Invalid Phone Number!", errors.CategoryValidation).
	WithTextCode("INVALID_PHONE")
