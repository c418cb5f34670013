package domain

import (
	"errors"
	"fmt"
)

// Credential and authorization failures.
var (
	// ErrUnauthorized marks a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredential marks a token that fails signature, shape, or expiry checks.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrForbidden marks a valid identity with insufficient role.
	ErrForbidden = errors.New("access forbidden")
)

// Entity lookups.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCityNotFound     = errors.New("city not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrOfferNotFound    = errors.New("offer not found")
	// ErrAssociationNotFound reports a link mutation that affected zero rows:
	// linking an already-linked pair or unlinking an absent one.
	ErrAssociationNotFound = errors.New("association not found")
	// ErrNoResults marks an empty search outcome, which this service surfaces
	// as a failure rather than an empty success.
	ErrNoResults = errors.New("no results")
)

// Uniqueness conflicts.
var (
	ErrUserExists     = errors.New("username already taken")
	ErrCityExists     = errors.New("city already exists")
	ErrCategoryExists = errors.New("category already exists")
	ErrOfferExists    = errors.New("offer already exists")
)

// Invalid arguments.
var (
	ErrTooManyCategories = fmt.Errorf("an offer may have at most %d categories", MaxOfferCategories)
	ErrInvalidOffset     = errors.New("offset must be zero or positive")
)

// EntityLinkedError rejects deletion of a city or category that is still
// referenced by offers. Count is the exact number of live references and is
// part of the user-facing message.
type EntityLinkedError struct {
	Entity string
	Count  int64
}

func (e *EntityLinkedError) Error() string {
	return fmt.Sprintf("%s is linked to %d offer(s) and cannot be deleted", e.Entity, e.Count)
}
