// Package apperr defines the base error kinds shared across services.
// Packages wrap these with fmt.Errorf("%w: ...") so handlers can map any
// service error to an HTTP status with a single errors.Is chain.
package apperr

import "errors"

var (
	// ErrValidation marks malformed input, rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks a failed credential check (e.g. manager PIN).
	ErrUnauthorized = errors.New("not authorized")

	// ErrConflict marks a transition from/into an incompatible state.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks a missing order, table, or inventory item.
	ErrNotFound = errors.New("not found")

	// ErrExternal marks a failed call to a collaborator the caller may retry.
	ErrExternal = errors.New("external service failure")
)
