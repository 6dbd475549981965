package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	apperrors "github.com/allisson/stepup/internal/errors"
	"github.com/allisson/stepup/internal/remote"
)

// CredentialClient implements usecase.CredentialAPI over the remote HTTP
// service. Mutating calls are signed with a user action token obtained from
// the token provider; code-based registration is the exception because the
// one-time code is its authorization.
type CredentialClient struct {
	client *remote.Client
	tokens remote.TokenProvider
}

// NewCredentialClient creates the credential lifecycle client.
func NewCredentialClient(client *remote.Client, tokens remote.TokenProvider) *CredentialClient {
	return &CredentialClient{client: client, tokens: tokens}
}

type wireCredential struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	PublicKey  string     `json:"publicKey,omitempty"`
	Status     string     `json:"status"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type createCredentialRequest struct {
	Kind             string `json:"kind"`
	Name             string `json:"name"`
	PublicKey        string `json:"publicKey,omitempty"`
	RegistrationCode string `json:"registrationCode,omitempty"`
}

// CreateCredential registers a credential authorized by a prior
// authentication proof.
func (c *CredentialClient) CreateCredential(
	ctx context.Context,
	input *authDomain.RegisterCredentialInput,
) (*authDomain.Credential, error) {
	payload, err := json.Marshal(createCredentialRequest{
		Kind:      string(input.Kind),
		Name:      input.Name,
		PublicKey: input.PublicKey,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal credential request")
	}

	var resp wireCredential
	if err := c.client.SignAndDo(ctx, c.tokens, http.MethodPost, "/auth/credentials", payload, &resp); err != nil {
		return nil, err
	}
	return credentialFromWire(&resp), nil
}

// CreateCredentialWithCode registers a credential authorized by a one-time
// registration code. No user action proof is attached; the code is the
// authorization.
func (c *CredentialClient) CreateCredentialWithCode(
	ctx context.Context,
	input *authDomain.RegisterCredentialInput,
) (*authDomain.Credential, error) {
	payload, err := json.Marshal(createCredentialRequest{
		Kind:             string(input.Kind),
		Name:             input.Name,
		PublicKey:        input.PublicKey,
		RegistrationCode: input.RegistrationCode,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal credential request")
	}

	var resp wireCredential
	if err := c.client.Do(ctx, http.MethodPost, "/auth/credentials/code", payload, nil, &resp); err != nil {
		return nil, err
	}
	return credentialFromWire(&resp), nil
}

// ActivateCredential transitions a provisional credential to active.
func (c *CredentialClient) ActivateCredential(ctx context.Context, credentialID string) error {
	path := fmt.Sprintf("/auth/credentials/%s/activate", credentialID)
	return c.client.SignAndDo(ctx, c.tokens, http.MethodPut, path, nil, nil)
}

// ArchiveCredential archives a credential.
func (c *CredentialClient) ArchiveCredential(ctx context.Context, credentialID string) error {
	path := fmt.Sprintf("/auth/credentials/%s/archive", credentialID)
	return c.client.SignAndDo(ctx, c.tokens, http.MethodPut, path, nil, nil)
}

type delegateCredentialRequest struct {
	UserID string `json:"userId"`
}

// DelegateCredential reassigns a credential to another user.
func (c *CredentialClient) DelegateCredential(ctx context.Context, credentialID, userID string) error {
	payload, err := json.Marshal(delegateCredentialRequest{UserID: userID})
	if err != nil {
		return apperrors.Wrap(err, "marshal delegate request")
	}
	path := fmt.Sprintf("/auth/credentials/%s/delegate", credentialID)
	return c.client.SignAndDo(ctx, c.tokens, http.MethodPut, path, payload, nil)
}

type updateCredentialRequest struct {
	Name string `json:"name"`
}

// UpdateCredential modifies mutable credential fields.
func (c *CredentialClient) UpdateCredential(
	ctx context.Context,
	credentialID string,
	input *authDomain.UpdateCredentialInput,
) (*authDomain.Credential, error) {
	payload, err := json.Marshal(updateCredentialRequest{Name: input.Name})
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal update request")
	}

	var resp wireCredential
	path := fmt.Sprintf("/auth/credentials/%s", credentialID)
	if err := c.client.SignAndDo(ctx, c.tokens, http.MethodPut, path, payload, &resp); err != nil {
		return nil, err
	}
	return credentialFromWire(&resp), nil
}

// GetCredential retrieves a credential by id. Reads are not signed.
func (c *CredentialClient) GetCredential(ctx context.Context, credentialID string) (*authDomain.Credential, error) {
	var resp wireCredential
	path := fmt.Sprintf("/auth/credentials/%s", credentialID)
	if err := c.client.Do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return credentialFromWire(&resp), nil
}

type listCredentialsResponse struct {
	Items []wireCredential `json:"items"`
}

// ListCredentials lists the caller's registered credentials.
func (c *CredentialClient) ListCredentials(ctx context.Context) ([]*authDomain.Credential, error) {
	var resp listCredentialsResponse
	if err := c.client.Do(ctx, http.MethodGet, "/auth/credentials", nil, nil, &resp); err != nil {
		return nil, err
	}

	credentials := make([]*authDomain.Credential, 0, len(resp.Items))
	for i := range resp.Items {
		credentials = append(credentials, credentialFromWire(&resp.Items[i]))
	}
	return credentials, nil
}

type createRegistrationCodeRequest struct {
	UserID   string `json:"userId"`
	CodeHash string `json:"codeHash"`
}

// CreateRegistrationCode registers a hashed one-time code that authorizes a
// future code-based registration for the given user. Only the hash crosses
// the wire.
func (c *CredentialClient) CreateRegistrationCode(ctx context.Context, userID, hashedCode string) error {
	payload, err := json.Marshal(createRegistrationCodeRequest{UserID: userID, CodeHash: hashedCode})
	if err != nil {
		return apperrors.Wrap(err, "marshal registration code request")
	}
	return c.client.SignAndDo(ctx, c.tokens, http.MethodPost, "/auth/registration/code", payload, nil)
}

func credentialFromWire(resp *wireCredential) *authDomain.Credential {
	return &authDomain.Credential{
		ID:         resp.ID,
		Kind:       authDomain.CredentialKind(resp.Kind),
		UserID:     resp.UserID,
		Name:       resp.Name,
		PublicKey:  resp.PublicKey,
		Status:     authDomain.CredentialStatus(resp.Status),
		LastUsedAt: resp.LastUsedAt,
		CreatedAt:  resp.CreatedAt,
	}
}
