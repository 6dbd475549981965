// Package errors provides standardized domain errors that express protocol intent
// rather than transport details. Domain packages wrap these bases into their own
// sentinel errors so callers can branch on errors.Is without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Standard base errors shared by all domain modules.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing state (e.g., duplicate decision).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks a valid authentication proof.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the action is not permitted for the principal.
	ErrForbidden = errors.New("forbidden")

	// ErrExpired indicates a time-bound entity (challenge, token, approval window)
	// is past its expiration.
	ErrExpired = errors.New("expired")

	// ErrUnavailable indicates a required capability or collaborator cannot
	// currently serve the request.
	ErrUnavailable = errors.New("unavailable")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context while preserving the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
