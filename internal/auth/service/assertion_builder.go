package service

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-webauthn/webauthn/protocol"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	apperrors "github.com/allisson/stepup/internal/errors"
)

// assertionBuilder validates signer output against the challenge before any
// network round trip: union exclusivity, kind compatibility per factor, and
// for WebAuthn assertions the full authenticator response shape.
type assertionBuilder struct {
	now func() time.Time
}

// NewAssertionBuilder creates an AssertionBuilder.
func NewAssertionBuilder() AssertionBuilder {
	return &assertionBuilder{now: time.Now}
}

// BuildFirstFactor validates a first-factor assertion against the challenge.
func (b *assertionBuilder) BuildFirstFactor(
	challenge *authDomain.Challenge,
	assertion authDomain.Assertion,
) (authDomain.Assertion, error) {
	return b.build(challenge, assertion, authDomain.FirstFactor)
}

// BuildSecondFactor validates a second-factor assertion against the challenge.
func (b *assertionBuilder) BuildSecondFactor(
	challenge *authDomain.Challenge,
	assertion authDomain.Assertion,
) (authDomain.Assertion, error) {
	return b.build(challenge, assertion, authDomain.SecondFactor)
}

func (b *assertionBuilder) build(
	challenge *authDomain.Challenge,
	assertion authDomain.Assertion,
	factor authDomain.Factor,
) (authDomain.Assertion, error) {
	if challenge == nil {
		return authDomain.Assertion{}, apperrors.Wrap(apperrors.ErrInvalidInput, "challenge is required")
	}
	if challenge.Consumed() {
		return authDomain.Assertion{}, authDomain.ErrChallengeConsumed
	}
	if challenge.Expired(b.now()) {
		return authDomain.Assertion{}, authDomain.ErrChallengeExpired
	}

	// Closed-union invariant first: the payload must match the declared kind.
	if err := assertion.Validate(); err != nil {
		return authDomain.Assertion{}, err
	}

	// Kind compatibility is checked locally so an incompatible assertion never
	// reaches the verification collaborator.
	if !challenge.AllowsKind(factor, assertion.Kind) {
		return authDomain.Assertion{}, authDomain.ErrUnsupportedAssertionKind
	}

	if assertion.Kind == authDomain.WebAuthnCredential {
		if err := validateWebAuthnAssertion(assertion.WebAuthn); err != nil {
			return authDomain.Assertion{}, err
		}
	}

	return assertion, nil
}

// validateWebAuthnAssertion runs the assembled authenticator response through
// the WebAuthn protocol parser, which rejects malformed client data,
// authenticator data, and encodings that a remote verifier would bounce.
func validateWebAuthnAssertion(sig *authDomain.WebAuthnSignature) error {
	body := protocol.CredentialAssertionResponse{
		PublicKeyCredential: protocol.PublicKeyCredential{
			Credential: protocol.Credential{
				ID:   sig.CredentialID,
				Type: "public-key",
			},
			RawID: mustDecodeBase64URL(sig.CredentialID),
		},
		AssertionResponse: protocol.AuthenticatorAssertionResponse{
			AuthenticatorResponse: protocol.AuthenticatorResponse{
				ClientDataJSON: mustDecodeBase64URL(sig.ClientDataJSON),
			},
			AuthenticatorData: mustDecodeBase64URL(sig.AuthenticatorData),
			Signature:         mustDecodeBase64URL(sig.Signature),
			UserHandle:        mustDecodeBase64URL(sig.UserHandle),
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode webauthn assertion")
	}

	if _, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(encoded)); err != nil {
		return apperrors.Wrap(authDomain.ErrUnsupportedAssertionKind, err.Error())
	}
	return nil
}

func mustDecodeBase64URL(s string) protocol.URLEncodedBase64 {
	var out protocol.URLEncodedBase64
	// Errors are ignored: the field already passed Base64URL validation.
	_ = out.UnmarshalJSON([]byte(`"` + s + `"`))
	return out
}
