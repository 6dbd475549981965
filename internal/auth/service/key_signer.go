package service

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	apperrors "github.com/allisson/stepup/internal/errors"
)

// clientData is the canonical structure a key signer signs over. It covers
// the challenge payload so the resulting signature cannot be replayed against
// a different challenge.
type clientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
}

// keySigner signs challenges with an in-memory Ed25519 private key.
type keySigner struct {
	credentialID string
	privateKey   ed25519.PrivateKey
}

// NewKeySigner creates a CredentialSigner backed by an Ed25519 private key.
// The credentialID identifies the registered credential the key belongs to.
func NewKeySigner(credentialID string, privateKey ed25519.PrivateKey) CredentialSigner {
	return &keySigner{credentialID: credentialID, privateKey: privateKey}
}

// Kind returns KeyCredential.
func (k *keySigner) Kind() authDomain.CredentialKind {
	return authDomain.KeyCredential
}

// Sign produces a key-signature assertion over the challenge payload.
func (k *keySigner) Sign(ctx context.Context, challenge *authDomain.Challenge) (authDomain.Assertion, error) {
	if err := ctx.Err(); err != nil {
		return authDomain.Assertion{}, apperrors.Wrap(authDomain.ErrSignerCancelled, err.Error())
	}
	if len(k.privateKey) != ed25519.PrivateKeySize {
		return authDomain.Assertion{}, authDomain.ErrSignerUnavailable
	}

	data, err := json.Marshal(clientData{
		Type:      "key.get",
		Challenge: challenge.Payload,
	})
	if err != nil {
		return authDomain.Assertion{}, apperrors.Wrap(err, "failed to encode client data")
	}

	signature := ed25519.Sign(k.privateKey, data)

	return authDomain.NewKeyAssertion(
		k.credentialID,
		base64.RawURLEncoding.EncodeToString(data),
		base64.RawURLEncoding.EncodeToString(signature),
	), nil
}
