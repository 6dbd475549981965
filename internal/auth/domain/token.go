package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserActionToken is the short-lived proof that a verified assertion
// authorizes one specific request. It is single purpose: issued for one
// fingerprint, attached to that request, then discarded.
type UserActionToken struct {
	Value       string      // Opaque token string attached to the action request
	Fingerprint Fingerprint // The request the token was issued for
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// NewUserActionToken binds a freshly issued token value to the fingerprint it
// was verified against. When the value is a JWT its exp claim sets the
// expiration; the signature is the server's to verify, so the claims are read
// without verification purely to learn the lifetime. Otherwise fallbackTTL
// applies.
func NewUserActionToken(value string, fp Fingerprint, now time.Time, fallbackTTL time.Duration) UserActionToken {
	token := UserActionToken{
		Value:       value,
		Fingerprint: fp,
		IssuedAt:    now,
		ExpiresAt:   now.Add(fallbackTTL),
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(value, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			token.ExpiresAt = exp.Time
		}
	}

	return token
}

// Expired reports whether the token's lifetime has elapsed.
func (t *UserActionToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// AuthorizeExecution checks locally that the token may be attached to a
// request with the given fingerprint. Fail fast: the remote service enforces
// the same binding, but a mismatch must never leave the process.
func (t *UserActionToken) AuthorizeExecution(fp Fingerprint, now time.Time) error {
	if !t.Fingerprint.Equal(fp) {
		return ErrTokenFingerprintMismatch
	}
	if t.Expired(now) {
		return ErrTokenExpired
	}
	return nil
}
