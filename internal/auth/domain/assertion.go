package domain

import (
	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/stepup/internal/validation"
)

// KeySignature is the payload for Key and RecoveryKey assertions: a raw
// signature over the challenge payload plus the client data it was computed
// over.
type KeySignature struct {
	CredentialID string // Id of the signing credential
	ClientData   string // Base64url client data covering the challenge payload
	Signature    string // Base64url signature bytes
}

// Validate checks the key signature payload fields.
func (k *KeySignature) Validate() error {
	return validation.ValidateStruct(k,
		validation.Field(&k.CredentialID, validation.Required),
		validation.Field(&k.ClientData, validation.Required, appvalidation.Base64URL),
		validation.Field(&k.Signature, validation.Required, appvalidation.Base64URL),
	)
}

// WebAuthnSignature is the payload for WebAuthn assertions, mirroring the
// authenticator assertion response fields.
type WebAuthnSignature struct {
	CredentialID      string // Base64url credential id
	AuthenticatorData string // Base64url authenticator data
	ClientDataJSON    string // Base64url client data JSON
	Signature         string // Base64url assertion signature
	UserHandle        string // Base64url user handle, may be empty
}

// Validate checks the WebAuthn signature payload fields.
func (w *WebAuthnSignature) Validate() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.CredentialID, validation.Required, appvalidation.Base64URL),
		validation.Field(&w.AuthenticatorData, validation.Required, appvalidation.Base64URL),
		validation.Field(&w.ClientDataJSON, validation.Required, appvalidation.Base64URL),
		validation.Field(&w.Signature, validation.Required, appvalidation.Base64URL),
		validation.Field(&w.UserHandle, appvalidation.Base64URL),
	)
}

// Assertion is the proof produced in response to a challenge, tagged by
// credential kind. It is a closed union: exactly one payload variant is
// populated, and it must match the declared kind. Assertions are ephemeral
// and never persisted; each one is bound to a single challenge.
type Assertion struct {
	Kind CredentialKind

	Key      *KeySignature      // Set for KeyCredential and RecoveryKeyCredential
	Password string             // Set for PasswordCredential
	WebAuthn *WebAuthnSignature // Set for WebAuthnCredential
	OTPCode  string             // Set for TOTPCredential
}

// NewKeyAssertion builds a key-signature assertion.
func NewKeyAssertion(credentialID, clientData, signature string) Assertion {
	return Assertion{
		Kind: KeyCredential,
		Key:  &KeySignature{CredentialID: credentialID, ClientData: clientData, Signature: signature},
	}
}

// NewRecoveryKeyAssertion builds a recovery-key assertion. The payload shape
// matches a key signature; only the declared kind differs.
func NewRecoveryKeyAssertion(credentialID, clientData, signature string) Assertion {
	return Assertion{
		Kind: RecoveryKeyCredential,
		Key:  &KeySignature{CredentialID: credentialID, ClientData: clientData, Signature: signature},
	}
}

// NewPasswordAssertion builds a password assertion.
func NewPasswordAssertion(password string) Assertion {
	return Assertion{Kind: PasswordCredential, Password: password}
}

// NewWebAuthnAssertion builds a WebAuthn assertion.
func NewWebAuthnAssertion(sig WebAuthnSignature) Assertion {
	return Assertion{Kind: WebAuthnCredential, WebAuthn: &sig}
}

// NewTOTPAssertion builds a TOTP code assertion.
func NewTOTPAssertion(code string) Assertion {
	return Assertion{Kind: TOTPCredential, OTPCode: code}
}

// Validate enforces the closed-union invariant: the declared kind is known,
// the payload variant matching the kind is populated and well-formed, and
// every other variant is empty.
func (a *Assertion) Validate() error {
	if !a.Kind.Valid() {
		return ErrUnsupportedAssertionKind
	}

	populated := 0
	if a.Key != nil {
		populated++
	}
	if a.Password != "" {
		populated++
	}
	if a.WebAuthn != nil {
		populated++
	}
	if a.OTPCode != "" {
		populated++
	}
	if populated != 1 {
		return appvalidation.WrapValidationError(
			validation.NewError("validation_assertion_union", "exactly one assertion payload must be populated"),
		)
	}

	switch a.Kind {
	case KeyCredential, RecoveryKeyCredential:
		if a.Key == nil {
			return errKindPayloadMismatch(a.Kind)
		}
		return appvalidation.WrapValidationError(a.Key.Validate())
	case PasswordCredential:
		if a.Password == "" {
			return errKindPayloadMismatch(a.Kind)
		}
		return nil
	case WebAuthnCredential:
		if a.WebAuthn == nil {
			return errKindPayloadMismatch(a.Kind)
		}
		return appvalidation.WrapValidationError(a.WebAuthn.Validate())
	case TOTPCredential:
		if a.OTPCode == "" {
			return errKindPayloadMismatch(a.Kind)
		}
		return appvalidation.WrapValidationError(
			validation.Validate(a.OTPCode, appvalidation.OTPCode),
		)
	}
	return ErrUnsupportedAssertionKind
}

func errKindPayloadMismatch(kind CredentialKind) error {
	return appvalidation.WrapValidationError(
		validation.NewError("validation_assertion_payload", "payload does not match declared kind "+string(kind)),
	)
}
