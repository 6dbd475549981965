package usecase

import (
	"context"
	"log/slog"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	authService "github.com/allisson/stepup/internal/auth/service"
	apperrors "github.com/allisson/stepup/internal/errors"
)

// credentialUseCase implements CredentialUseCase. Lifecycle invariants that
// can be checked locally (archived is terminal) are enforced before any
// network call.
type credentialUseCase struct {
	api    CredentialAPI
	codes  authService.CodeService
	logger *slog.Logger
}

// NewCredentialUseCase creates a CredentialUseCase with the provided
// dependencies.
func NewCredentialUseCase(
	api CredentialAPI,
	codes authService.CodeService,
	logger *slog.Logger,
) CredentialUseCase {
	return &credentialUseCase{
		api:    api,
		codes:  codes,
		logger: logger,
	}
}

// Register binds a new credential to the caller.
//
// Authorization comes from exactly one of two sources:
//   - a one-time registration code (input.RegistrationCode), or
//   - a prior authentication proof, attached transparently by the transport.
func (c *credentialUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterCredentialInput,
) (*authDomain.Credential, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var credential *authDomain.Credential
	var err error
	if input.RegistrationCode != "" {
		credential, err = c.api.CreateCredentialWithCode(ctx, input)
	} else {
		credential, err = c.api.CreateCredential(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("credential registered",
		slog.String("credential_id", credential.ID),
		slog.String("kind", string(credential.Kind)),
	)
	return credential, nil
}

// Activate transitions a provisional credential to active. The transition is
// validated locally first so an archived credential fails fast.
func (c *credentialUseCase) Activate(ctx context.Context, credentialID string) error {
	credential, err := c.api.GetCredential(ctx, credentialID)
	if err != nil {
		return err
	}
	if err := credential.Activate(); err != nil {
		return err
	}

	return c.api.ActivateCredential(ctx, credentialID)
}

// Archive archives a credential. Archiving an already archived credential is
// rejected locally.
func (c *credentialUseCase) Archive(ctx context.Context, credentialID string) error {
	credential, err := c.api.GetCredential(ctx, credentialID)
	if err != nil {
		return err
	}
	if err := credential.Archive(); err != nil {
		return err
	}

	if err := c.api.ArchiveCredential(ctx, credentialID); err != nil {
		return err
	}

	c.logger.Info("credential archived", slog.String("credential_id", credentialID))
	return nil
}

// Delegate reassigns a credential to another user id.
func (c *credentialUseCase) Delegate(ctx context.Context, credentialID, userID string) error {
	if userID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "delegate user id is required")
	}

	credential, err := c.api.GetCredential(ctx, credentialID)
	if err != nil {
		return err
	}
	if err := credential.Delegate(userID); err != nil {
		return err
	}

	if err := c.api.DelegateCredential(ctx, credentialID, userID); err != nil {
		return err
	}

	c.logger.Info("credential delegated",
		slog.String("credential_id", credentialID),
		slog.String("user_id", userID),
	)
	return nil
}

// Update modifies mutable credential fields.
func (c *credentialUseCase) Update(
	ctx context.Context,
	credentialID string,
	input *authDomain.UpdateCredentialInput,
) (*authDomain.Credential, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	credential, err := c.api.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if credential.Status == authDomain.ArchivedCredential {
		return nil, authDomain.ErrCredentialArchived
	}

	return c.api.UpdateCredential(ctx, credentialID, input)
}

// Get retrieves a credential by id.
func (c *credentialUseCase) Get(ctx context.Context, credentialID string) (*authDomain.Credential, error) {
	return c.api.GetCredential(ctx, credentialID)
}

// List lists the caller's registered credentials.
func (c *credentialUseCase) List(ctx context.Context) ([]*authDomain.Credential, error) {
	return c.api.ListCredentials(ctx)
}

// CreateRegistrationCode generates a one-time registration code for the user
// and registers its Argon2id hash with the remote service. The plain code is
// returned once; it is never logged or stored.
func (c *credentialUseCase) CreateRegistrationCode(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "user id is required")
	}

	plainCode, hashedCode, err := c.codes.GenerateCode()
	if err != nil {
		return "", err
	}

	if err := c.api.CreateRegistrationCode(ctx, userID, hashedCode); err != nil {
		return "", err
	}

	c.logger.Info("registration code created", slog.String("user_id", userID))
	return plainCode, nil
}
