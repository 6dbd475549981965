package service

import (
	"context"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	apperrors "github.com/allisson/stepup/internal/errors"
)

// PasswordPrompter supplies a password at signing time, typically by asking
// the user. Implementations return ErrSignerCancelled if the user declines.
type PasswordPrompter func(ctx context.Context) (string, error)

// passwordSigner produces password assertions from a prompter.
type passwordSigner struct {
	prompt PasswordPrompter
}

// NewPasswordSigner creates a CredentialSigner that obtains the password from
// the given prompter on every attempt. The password is never retained.
func NewPasswordSigner(prompt PasswordPrompter) CredentialSigner {
	return &passwordSigner{prompt: prompt}
}

// NewStaticPasswordSigner creates a CredentialSigner for a fixed password,
// suited to service accounts with a stored secret.
func NewStaticPasswordSigner(password string) CredentialSigner {
	return &passwordSigner{prompt: func(ctx context.Context) (string, error) {
		return password, nil
	}}
}

// Kind returns PasswordCredential.
func (p *passwordSigner) Kind() authDomain.CredentialKind {
	return authDomain.PasswordCredential
}

// Sign produces a password assertion.
func (p *passwordSigner) Sign(ctx context.Context, challenge *authDomain.Challenge) (authDomain.Assertion, error) {
	if err := ctx.Err(); err != nil {
		return authDomain.Assertion{}, apperrors.Wrap(authDomain.ErrSignerCancelled, err.Error())
	}
	if p.prompt == nil {
		return authDomain.Assertion{}, authDomain.ErrSignerUnavailable
	}

	password, err := p.prompt(ctx)
	if err != nil {
		return authDomain.Assertion{}, apperrors.Wrap(authDomain.ErrSignerCancelled, err.Error())
	}
	if password == "" {
		return authDomain.Assertion{}, authDomain.ErrSignerUnavailable
	}

	return authDomain.NewPasswordAssertion(password), nil
}
