package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/stepup/internal/errors"
	appvalidation "github.com/allisson/stepup/internal/validation"
)

// Fingerprint canonically identifies one intended request: HTTP method,
// path, and a digest over the canonicalized payload bytes. A user action
// token is bound to exactly one fingerprint, and presenting it for any other
// fingerprint is rejected locally before the request leaves the process.
type Fingerprint struct {
	Method      string
	Path        string
	PayloadHash string // Hex SHA-256 over the canonical payload bytes
}

// NewFingerprint computes the fingerprint of a pending action. The payload is
// canonicalized so that semantically equal JSON bodies produce equal
// fingerprints regardless of key order or insignificant whitespace. An empty
// payload is valid and hashes to the digest of the empty string.
func NewFingerprint(method, path string, payload []byte) (Fingerprint, error) {
	err := validation.Errors{
		"method": validation.Validate(method, validation.Required, appvalidation.HTTPMethod),
		"path":   validation.Validate(path, validation.Required, appvalidation.RequestPath),
	}.Filter()
	if err != nil {
		return Fingerprint{}, appvalidation.WrapValidationError(err)
	}

	canonical, err := canonicalizePayload(payload)
	if err != nil {
		return Fingerprint{}, err
	}

	sum := sha256.Sum256(canonical)
	return Fingerprint{
		Method:      method,
		Path:        path,
		PayloadHash: hex.EncodeToString(sum[:]),
	}, nil
}

// Equal reports whether two fingerprints identify the same request.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Method == other.Method && f.Path == other.Path && f.PayloadHash == other.PayloadHash
}

// String renders the fingerprint for logs. The payload digest rather than the
// payload itself, so sensitive bodies never reach log output.
func (f Fingerprint) String() string {
	return f.Method + " " + f.Path + " " + f.PayloadHash
}

// canonicalizePayload produces deterministic bytes for a JSON payload:
// decode then re-encode, which sorts object keys and strips whitespace.
// Non-JSON payloads are used as-is.
func canonicalizePayload(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		// Not JSON: the raw bytes are already canonical.
		return payload, nil
	}

	canonical, err := json.Marshal(decoded)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to canonicalize payload")
	}
	return canonical, nil
}
