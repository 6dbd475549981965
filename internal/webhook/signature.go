// Package webhook implements the event listener: it verifies signed events
// pushed by the remote service and applies approval status updates to the
// locally tracked workflows.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/allisson/stepup/internal/errors"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw event body.
const SignatureHeader = "X-Webhook-Signature"

// SignatureVerifier verifies event signatures with a key derived from the
// shared webhook secret. HKDF-SHA256 separates signing key usage from any
// other use of the secret; the info string is versioned for future algorithm
// changes.
type SignatureVerifier struct {
	signingKey []byte
}

// NewSignatureVerifier derives the signing key from the shared secret.
func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	if secret == "" {
		return nil, apperrors.New("webhook secret must not be empty")
	}

	info := []byte("event-signing-v1")
	reader := hkdf.New(sha256.New, []byte(secret), nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, apperrors.Wrap(err, "derive signing key")
	}
	return &SignatureVerifier{signingKey: signingKey}, nil
}

// Sign computes the hex-encoded HMAC-SHA256 signature of the body.
func (v *SignatureVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.signingKey)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature against the raw body in constant time.
func (v *SignatureVerifier) Verify(body []byte, signature string) error {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "malformed event signature")
	}

	mac := hmac.New(sha256.New, v.signingKey)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "event signature mismatch")
	}
	return nil
}
