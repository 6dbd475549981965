// Package domain defines the authentication domain models: credentials, challenges,
// assertions, and user action tokens.
//
// The challenge/response protocol turns a pluggable credential signer into a
// replay-resistant proof bound to one specific request. Assertions are closed
// tagged unions: exactly one payload variant is populated per declared kind,
// validated at construction.
package domain

// CredentialKind enumerates the credential types a principal may register.
type CredentialKind string

const (
	// KeyCredential is an asymmetric key pair; assertions carry a signature
	// over the challenge.
	KeyCredential CredentialKind = "Key"

	// PasswordCredential is a shared-secret password.
	PasswordCredential CredentialKind = "Password"

	// WebAuthnCredential is a FIDO2/WebAuthn authenticator.
	WebAuthnCredential CredentialKind = "Fido2"

	// RecoveryKeyCredential is an offline recovery key used to regain access.
	RecoveryKeyCredential CredentialKind = "RecoveryKey"

	// TOTPCredential is a time-based one-time password seed.
	TOTPCredential CredentialKind = "Totp"
)

// Valid reports whether the kind is a member of the closed set.
func (k CredentialKind) Valid() bool {
	switch k {
	case KeyCredential, PasswordCredential, WebAuthnCredential, RecoveryKeyCredential, TOTPCredential:
		return true
	}
	return false
}

// CredentialStatus tracks the credential lifecycle.
type CredentialStatus string

const (
	// ProvisionalCredential is registered but not yet activated.
	ProvisionalCredential CredentialStatus = "Provisional"

	// ActiveCredential can authenticate.
	ActiveCredential CredentialStatus = "Active"

	// ArchivedCredential is terminal: it cannot authenticate and cannot be
	// reactivated.
	ArchivedCredential CredentialStatus = "Archived"
)

// Factor identifies the position of an assertion in a multi-factor exchange.
type Factor string

const (
	// FirstFactor is the primary assertion every exchange requires.
	FirstFactor Factor = "first"

	// SecondFactor is the step-up assertion some challenges mandate.
	SecondFactor Factor = "second"
)
