// Package service provides credential signer implementations and assertion
// construction for the challenge/response protocol.
package service

import (
	"context"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
)

// CredentialSigner is the capability contract for producing a first-factor
// assertion in response to a challenge. Implementations may wrap a hardware
// key, a password store, or a TOTP generator; the caller supplies any
// conforming implementation.
//
// The contract makes no timing guarantee. Signing may block on user
// interaction (a hardware tap is the longest-latency step in the protocol),
// so callers must bound the call with the context and implementations must
// honor cancellation.
type CredentialSigner interface {
	// Kind returns the credential kind of the assertions this signer produces,
	// letting callers check challenge compatibility before prompting the user.
	Kind() authDomain.CredentialKind

	// Sign produces a first-factor assertion for the challenge.
	// Returns ErrSignerUnavailable if key material is unreachable,
	// ErrSignerCancelled if the user declined the prompt.
	Sign(ctx context.Context, challenge *authDomain.Challenge) (authDomain.Assertion, error)
}

// SecondFactorSigner produces the step-up assertion for challenges that
// mandate a second factor.
type SecondFactorSigner interface {
	Kind() authDomain.CredentialKind

	SignSecondFactor(ctx context.Context, challenge *authDomain.Challenge) (authDomain.Assertion, error)
}

// AssertionBuilder maps signer output into the wire-level assertion shape,
// enforcing kind/payload exclusivity and challenge kind compatibility before
// anything is submitted.
type AssertionBuilder interface {
	// BuildFirstFactor validates a signer-produced assertion against the
	// challenge's allowed first-factor kinds. Returns
	// ErrUnsupportedAssertionKind before any network round trip when the kind
	// is not allowed.
	BuildFirstFactor(challenge *authDomain.Challenge, assertion authDomain.Assertion) (authDomain.Assertion, error)

	// BuildSecondFactor validates a signer-produced assertion against the
	// challenge's allowed second-factor kinds.
	BuildSecondFactor(challenge *authDomain.Challenge, assertion authDomain.Assertion) (authDomain.Assertion, error)
}
