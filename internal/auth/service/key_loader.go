package service

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"os"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	apperrors "github.com/allisson/stepup/internal/errors"
)

// LoadEd25519PrivateKey reads a PEM-encoded PKCS#8 Ed25519 private key from
// disk. Returns ErrSignerUnavailable when the file is missing or does not
// hold an Ed25519 key, so a misconfigured signer surfaces as the same error
// an unreachable hardware token would.
func LoadEd25519PrivateKey(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(authDomain.ErrSignerUnavailable, err.Error())
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, apperrors.Wrap(authDomain.ErrSignerUnavailable, "no PEM block found")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, apperrors.Wrap(authDomain.ErrSignerUnavailable, err.Error())
	}

	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, apperrors.Wrap(authDomain.ErrSignerUnavailable, "private key is not Ed25519")
	}
	return key, nil
}
