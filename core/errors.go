package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrAssertionExists = errors.New("assertion already exists for badge and user")
	ErrBakingTransport = errors.New("baking service request failed")

	// Reasons wrapped by ValidationError
	ErrRequired     = errors.New("can't be blank")
	ErrInvalidBadge = errors.New("is invalid")
	ErrTaken        = errors.New("has already been taken")
)

// ValidationError reports why an assertion could not be created
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %v: %s", e.Field, e.Err, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BakingTransportError is returned when the baking service answers with a non-success status.
// Body holds at most the first few kilobytes of the response, for diagnostics.
type BakingTransportError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *BakingTransportError) Error() string {
	return fmt.Sprintf("baking badge failed: response was not a success: %s: %q", e.Status, e.Body)
}

func (e *BakingTransportError) Is(target error) bool {
	return target == ErrBakingTransport
}
