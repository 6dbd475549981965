package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/stepup/internal/errors"
)

// CodeService generates and verifies one-time registration and recovery
// codes. The plain code is shown once to the operator; only the Argon2id
// hash is registered with the remote service.
type CodeService interface {
	// GenerateCode creates a new cryptographically secure code and its hash.
	GenerateCode() (plainCode string, hashedCode string, err error)

	// CompareCode performs a constant-time comparison between a plain code
	// and its hash.
	CompareCode(plainCode string, hashedCode string) bool
}

// codeService implements CodeService using Argon2id hashing.
type codeService struct {
	hasher *pwdhash.PasswordHasher
}

// NewCodeService creates a CodeService using Argon2id with the Moderate
// policy, balancing verification latency against hardening.
func NewCodeService() CodeService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &codeService{hasher: hasher}
}

// GenerateCode creates a 32-byte random code, base64url-encoded, plus its hash.
func (c *codeService) GenerateCode() (plainCode string, hashedCode string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random code")
	}

	plainCode = base64.RawURLEncoding.EncodeToString(randomBytes)

	hashedCode, err = c.hasher.Hash([]byte(plainCode))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash code")
	}

	return plainCode, hashedCode, nil
}

// CompareCode verifies a plain code against its stored hash.
func (c *codeService) CompareCode(plainCode string, hashedCode string) bool {
	ok, err := c.hasher.Verify([]byte(plainCode), hashedCode)
	if err != nil {
		return false
	}
	return ok
}
