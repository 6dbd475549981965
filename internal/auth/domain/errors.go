package domain

import (
	"github.com/allisson/stepup/internal/errors"
)

// Authentication protocol errors. All are detectable locally before a network
// round trip except ErrInvalidAssertion, which surfaces a remote rejection.
var (
	// ErrChallengeExpired indicates the challenge's expiration passed before it
	// was verified. The only condition worth an automatic, bounded retry.
	ErrChallengeExpired = errors.Wrap(errors.ErrExpired, "challenge expired")

	// ErrChallengeConsumed indicates the single-use challenge was already spent.
	ErrChallengeConsumed = errors.Wrap(errors.ErrConflict, "challenge already consumed")

	// ErrUnsupportedAssertionKind indicates the assertion kind is not among the
	// challenge's allowed kinds for that factor.
	ErrUnsupportedAssertionKind = errors.Wrap(errors.ErrInvalidInput, "unsupported assertion kind")

	// ErrSignerUnavailable indicates the signer's underlying key material is
	// not reachable.
	ErrSignerUnavailable = errors.Wrap(errors.ErrUnavailable, "signer unavailable")

	// ErrSignerCancelled indicates the user declined the signer's prompt.
	ErrSignerCancelled = errors.Wrap(errors.ErrUnavailable, "signer cancelled by user")

	// ErrInvalidAssertion indicates the verification collaborator rejected the
	// assertion. Terminal for the attempt: a signed assertion is bound to one
	// challenge and must not be resubmitted.
	ErrInvalidAssertion = errors.Wrap(errors.ErrUnauthorized, "assertion rejected")

	// ErrTokenExpired indicates the user action token's lifetime elapsed.
	ErrTokenExpired = errors.Wrap(errors.ErrExpired, "user action token expired")

	// ErrTokenFingerprintMismatch indicates a token was presented for a request
	// other than the one it was issued for.
	ErrTokenFingerprintMismatch = errors.Wrap(errors.ErrForbidden, "user action token bound to a different request")

	// ErrCredentialNotFound indicates no credential with the given id exists.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrCredentialArchived indicates the credential is archived; archiving is
	// terminal and archived credentials cannot authenticate.
	ErrCredentialArchived = errors.Wrap(errors.ErrForbidden, "credential archived")
)
