package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/stepup/internal/errors"
)

func TestNewFingerprint(t *testing.T) {
	t.Run("equal payloads with different key order", func(t *testing.T) {
		fp1, err := NewFingerprint("POST", "/v2/wallets", []byte(`{"network":"mainnet","name":"ops"}`))
		assert.NoError(t, err)

		fp2, err := NewFingerprint("POST", "/v2/wallets", []byte(`{ "name": "ops", "network": "mainnet" }`))
		assert.NoError(t, err)

		assert.True(t, fp1.Equal(fp2))
	})

	t.Run("different payloads differ", func(t *testing.T) {
		fp1, err := NewFingerprint("POST", "/v2/wallets", []byte(`{"name":"ops"}`))
		assert.NoError(t, err)

		fp2, err := NewFingerprint("POST", "/v2/wallets", []byte(`{"name":"treasury"}`))
		assert.NoError(t, err)

		assert.False(t, fp1.Equal(fp2))
	})

	t.Run("different methods differ", func(t *testing.T) {
		fp1, err := NewFingerprint("POST", "/v2/wallets", nil)
		assert.NoError(t, err)

		fp2, err := NewFingerprint("DELETE", "/v2/wallets", nil)
		assert.NoError(t, err)

		assert.False(t, fp1.Equal(fp2))
	})

	t.Run("empty payload is valid", func(t *testing.T) {
		fp, err := NewFingerprint("GET", "/v2/wallets", nil)
		assert.NoError(t, err)
		assert.NotEmpty(t, fp.PayloadHash)
	})

	t.Run("non-json payload uses raw bytes", func(t *testing.T) {
		fp1, err := NewFingerprint("POST", "/v2/wallets", []byte("opaque-body"))
		assert.NoError(t, err)

		fp2, err := NewFingerprint("POST", "/v2/wallets", []byte("opaque-body"))
		assert.NoError(t, err)

		assert.True(t, fp1.Equal(fp2))
	})

	t.Run("invalid method rejected", func(t *testing.T) {
		_, err := NewFingerprint("fetch", "/v2/wallets", nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("invalid path rejected", func(t *testing.T) {
		_, err := NewFingerprint("POST", "v2/wallets", nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestFingerprintString(t *testing.T) {
	fp, err := NewFingerprint("POST", "/v2/wallets", []byte(`{"name":"ops"}`))
	assert.NoError(t, err)

	s := fp.String()
	assert.Contains(t, s, "POST /v2/wallets ")
	assert.NotContains(t, s, "ops") // digest only, never the payload
}
