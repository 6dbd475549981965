package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	apperrors "github.com/allisson/stepup/internal/errors"
)

const (
	totpPeriod = 30 * time.Second
	totpDigits = 6
)

// totpSigner produces RFC 6238 time-based one-time codes as second-factor
// assertions.
type totpSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTOTPSigner creates a SecondFactorSigner from a base32-encoded TOTP seed,
// the encoding authenticator apps exchange. Codes are 6 digits over a
// 30-second period with HMAC-SHA1, the interoperable defaults.
func NewTOTPSigner(base32Secret string) (SecondFactorSigner, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(base32Secret, " ", ""))
	secret, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
	if err != nil {
		return nil, apperrors.Wrap(authDomain.ErrSignerUnavailable, "invalid totp seed")
	}
	return &totpSigner{secret: secret, now: time.Now}, nil
}

// Kind returns TOTPCredential.
func (t *totpSigner) Kind() authDomain.CredentialKind {
	return authDomain.TOTPCredential
}

// SignSecondFactor produces a TOTP code assertion for the current period.
func (t *totpSigner) SignSecondFactor(ctx context.Context, challenge *authDomain.Challenge) (authDomain.Assertion, error) {
	if err := ctx.Err(); err != nil {
		return authDomain.Assertion{}, apperrors.Wrap(authDomain.ErrSignerCancelled, err.Error())
	}
	if len(t.secret) == 0 {
		return authDomain.Assertion{}, authDomain.ErrSignerUnavailable
	}

	counter := uint64(t.now().Unix()) / uint64(totpPeriod.Seconds())
	return authDomain.NewTOTPAssertion(hotp(t.secret, counter)), nil
}

// hotp computes an RFC 4226 HMAC-based one-time password with dynamic
// truncation.
func hotp(secret []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", totpDigits, code%1000000)
}
