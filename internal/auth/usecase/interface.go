// Package usecase defines business logic interfaces for the user action
// authentication protocol and credential lifecycle management.
package usecase

import (
	"context"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
)

// ChallengeAPI defines the consumed collaborator operations for the
// challenge/response exchange. The challenge store on the server side issues
// single-use challenges and verifies assertions against them.
type ChallengeAPI interface {
	// CreateUserActionChallenge requests a challenge scoped to the action's
	// fingerprint. Returns a fresh single-use challenge with its allowed
	// credential kinds and expiration.
	CreateUserActionChallenge(ctx context.Context, action *authDomain.UserAction) (*authDomain.Challenge, error)

	// CreateUserActionSignature submits assertions plus the challenge
	// identifier for verification and returns the issued token value.
	// Returns ErrChallengeExpired, ErrChallengeConsumed, or
	// ErrInvalidAssertion on rejection.
	CreateUserActionSignature(
		ctx context.Context,
		challengeID string,
		firstFactor authDomain.Assertion,
		secondFactor *authDomain.Assertion,
	) (string, error)
}

// CredentialAPI defines the consumed collaborator operations for credential
// lifecycle management. Mutating operations are signed transparently by the
// transport layer; ListCredentials and GetCredential are plain reads.
type CredentialAPI interface {
	// CreateCredential registers a new credential, authorized by a prior
	// authentication proof.
	CreateCredential(ctx context.Context, input *authDomain.RegisterCredentialInput) (*authDomain.Credential, error)

	// CreateCredentialWithCode registers a new credential authorized by a
	// one-time registration code instead of an authentication proof.
	CreateCredentialWithCode(ctx context.Context, input *authDomain.RegisterCredentialInput) (*authDomain.Credential, error)

	// ActivateCredential transitions a provisional credential to active.
	ActivateCredential(ctx context.Context, credentialID string) error

	// ArchiveCredential archives a credential. Terminal.
	ArchiveCredential(ctx context.Context, credentialID string) error

	// DelegateCredential reassigns a credential to another user.
	DelegateCredential(ctx context.Context, credentialID, userID string) error

	// UpdateCredential modifies mutable credential fields.
	UpdateCredential(ctx context.Context, credentialID string, input *authDomain.UpdateCredentialInput) (*authDomain.Credential, error)

	// GetCredential retrieves a credential by id. Returns
	// ErrCredentialNotFound if it does not exist.
	GetCredential(ctx context.Context, credentialID string) (*authDomain.Credential, error)

	// ListCredentials lists the caller's registered credentials.
	ListCredentials(ctx context.Context) ([]*authDomain.Credential, error)

	// CreateRegistrationCode registers a hashed one-time code that authorizes
	// a future CreateCredentialWithCode call for the given user.
	CreateRegistrationCode(ctx context.Context, userID, hashedCode string) error
}

// UserActionUseCase runs the challenge/response protocol that turns a
// credential signer into a user action token bound to one specific request.
type UserActionUseCase interface {
	// SignAction orchestrates challenge issuance, signing, and verification
	// for the action, returning a token bound to the action's fingerprint.
	//
	// Only the challenge step is retried: an expired challenge is replaced by
	// a fresh one, bounded by the configured retry budget. A rejected
	// assertion is terminal because a signed assertion is bound to one
	// challenge and resubmitting it is a protocol violation.
	SignAction(ctx context.Context, action *authDomain.UserAction) (*authDomain.UserActionToken, error)

	// AuthorizeExecution checks locally that the token was issued for exactly
	// this action before it is attached to the outgoing request.
	AuthorizeExecution(token *authDomain.UserActionToken, action *authDomain.UserAction) error
}

// CredentialUseCase manages the credential lifecycle the signer and
// authenticator depend on.
type CredentialUseCase interface {
	// Register binds a new credential to the caller. Registration is
	// authorized by a one-time code when input.RegistrationCode is set,
	// otherwise by a prior authentication proof.
	Register(ctx context.Context, input *authDomain.RegisterCredentialInput) (*authDomain.Credential, error)

	// Activate transitions a just-registered credential from provisional to
	// active.
	Activate(ctx context.Context, credentialID string) error

	// Archive archives a credential. Archiving is terminal: archived
	// credentials cannot authenticate and cannot be reactivated.
	Archive(ctx context.Context, credentialID string) error

	// Delegate reassigns a credential to another user id, used by
	// operator-provisioned onboarding flows.
	Delegate(ctx context.Context, credentialID, userID string) error

	// Update modifies mutable credential fields.
	Update(ctx context.Context, credentialID string, input *authDomain.UpdateCredentialInput) (*authDomain.Credential, error)

	// Get retrieves a credential by id.
	Get(ctx context.Context, credentialID string) (*authDomain.Credential, error)

	// List lists the caller's registered credentials.
	List(ctx context.Context) ([]*authDomain.Credential, error)

	// CreateRegistrationCode generates a one-time registration code for the
	// given user and registers its hash with the remote service. The plain
	// code is returned once and never stored.
	CreateRegistrationCode(ctx context.Context, userID string) (string, error)
}
