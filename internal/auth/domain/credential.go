package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/stepup/internal/validation"
)

// Credential represents a registered authentication credential bound to a user.
type Credential struct {
	ID         string           // Opaque id assigned by the remote service
	Kind       CredentialKind   // Member of the closed kind set
	UserID     string           // Owning user id
	Name       string           // Human-readable label
	PublicKey  string           // Base64url public key material, empty for shared-secret kinds
	Status     CredentialStatus // Provisional, Active, or Archived
	LastUsedAt *time.Time       // Last successful authentication, nil if never used
	CreatedAt  time.Time
}

// CanAuthenticate reports whether the credential may produce assertions.
// Archived and provisional credentials cannot authenticate.
func (c *Credential) CanAuthenticate() error {
	switch c.Status {
	case ActiveCredential:
		return nil
	case ArchivedCredential:
		return ErrCredentialArchived
	default:
		return ErrCredentialNotFound
	}
}

// Archive transitions the credential to its terminal status. Archiving an
// already archived credential is rejected.
func (c *Credential) Archive() error {
	if c.Status == ArchivedCredential {
		return ErrCredentialArchived
	}
	c.Status = ArchivedCredential
	return nil
}

// Activate transitions a provisional credential to active. Archived
// credentials stay archived.
func (c *Credential) Activate() error {
	if c.Status == ArchivedCredential {
		return ErrCredentialArchived
	}
	c.Status = ActiveCredential
	return nil
}

// Delegate reassigns ownership to another user. Used by operator-provisioned
// onboarding flows. Archived credentials cannot be delegated.
func (c *Credential) Delegate(userID string) error {
	if c.Status == ArchivedCredential {
		return ErrCredentialArchived
	}
	c.UserID = userID
	return nil
}

// RegisterCredentialInput carries the data needed to bind a new credential
// to a user. Either a prior authentication proof or a registration code
// authorizes the registration; the usecase enforces that exactly one is set.
type RegisterCredentialInput struct {
	Kind             CredentialKind
	Name             string
	PublicKey        string // Base64url-encoded, required for Key/Fido2/RecoveryKey kinds
	RegistrationCode string // One-time code for code-based registration
}

// Validate checks structural consistency of the registration input.
func (i *RegisterCredentialInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Kind, validation.Required, validation.By(validKind)),
		validation.Field(&i.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&i.PublicKey, appvalidation.Base64URL),
	)
	if err != nil {
		return appvalidation.WrapValidationError(err)
	}

	switch i.Kind {
	case KeyCredential, WebAuthnCredential, RecoveryKeyCredential:
		if i.PublicKey == "" {
			return appvalidation.WrapValidationError(
				validation.NewError("validation_public_key", "public key is required for asymmetric credential kinds"),
			)
		}
	}
	return nil
}

// UpdateCredentialInput carries mutable credential fields.
type UpdateCredentialInput struct {
	Name string
}

// Validate checks structural consistency of the update input.
func (i *UpdateCredentialInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Name, validation.Required, validation.Length(1, 128)),
	)
	return appvalidation.WrapValidationError(err)
}

func validKind(value interface{}) error {
	k, ok := value.(CredentialKind)
	if !ok || !k.Valid() {
		return validation.NewError("validation_credential_kind", "must be a known credential kind")
	}
	return nil
}
