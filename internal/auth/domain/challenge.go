package domain

import (
	"sync/atomic"
	"time"
)

// RelyingParty identifies the origin a WebAuthn challenge is bound to.
type RelyingParty struct {
	ID   string
	Name string
}

// SupportedKind describes one credential kind the challenge accepts, and
// whether responding with it mandates a second factor.
type SupportedKind struct {
	Factor               Factor
	Kind                 CredentialKind
	RequiresSecondFactor bool
}

// AllowedCredential references a specific registered credential the
// challenge accepts.
type AllowedCredential struct {
	ID   string
	Kind CredentialKind
}

// Challenge is a server-issued, single-use nonce a credential signer must
// respond to. The server is the authority on single use; the local consumed
// flag is defense in depth so a handle is never reused by this client after
// its first verification attempt.
type Challenge struct {
	Identifier         string              // Opaque id submitted with the assertions
	Payload            string              // Base64url nonce the signer signs over
	RelyingParty       *RelyingParty       // Origin binding, nil for non-WebAuthn flows
	SupportedKinds     []SupportedKind     // Accepted kinds per factor
	AllowedCredentials []AllowedCredential // Specific credentials, empty means any registered
	ExpiresAt          time.Time

	consumed atomic.Bool
}

// Expired reports whether the challenge's expiration has passed.
func (c *Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Consume marks the challenge as spent. Returns ErrChallengeConsumed if it
// was already spent, so concurrent callers cannot both submit it.
func (c *Challenge) Consume() error {
	if !c.consumed.CompareAndSwap(false, true) {
		return ErrChallengeConsumed
	}
	return nil
}

// Consumed reports whether the challenge was already spent locally.
func (c *Challenge) Consumed() bool {
	return c.consumed.Load()
}

// AllowsKind reports whether the challenge accepts the given assertion kind
// for the given factor position. An empty supported set allows any kind;
// the server then decides.
func (c *Challenge) AllowsKind(factor Factor, kind CredentialKind) bool {
	if len(c.SupportedKinds) == 0 {
		return true
	}
	for _, s := range c.SupportedKinds {
		if s.Factor == factor && s.Kind == kind {
			return true
		}
	}
	return false
}

// RequiresSecondFactor reports whether responding with the given first-factor
// kind mandates a step-up second factor.
func (c *Challenge) RequiresSecondFactor(kind CredentialKind) bool {
	for _, s := range c.SupportedKinds {
		if s.Factor == FirstFactor && s.Kind == kind {
			return s.RequiresSecondFactor
		}
	}
	return false
}

// SecondFactorKinds returns the credential kinds accepted for the second
// factor position.
func (c *Challenge) SecondFactorKinds() []CredentialKind {
	var kinds []CredentialKind
	for _, s := range c.SupportedKinds {
		if s.Factor == SecondFactor {
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}
