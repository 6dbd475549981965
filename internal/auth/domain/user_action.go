package domain

import (
	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/stepup/internal/validation"
)

// UserAction describes one pending sensitive request: the HTTP method, path,
// and payload of the call the caller intends to execute once authorized.
type UserAction struct {
	Method  string
	Path    string
	Payload []byte
}

// Validate checks the action identifies a well-formed request.
func (a *UserAction) Validate() error {
	err := validation.Errors{
		"method": validation.Validate(a.Method, validation.Required, appvalidation.HTTPMethod),
		"path":   validation.Validate(a.Path, validation.Required, appvalidation.RequestPath),
	}.Filter()
	return appvalidation.WrapValidationError(err)
}

// Fingerprint computes the canonical fingerprint of the action.
func (a *UserAction) Fingerprint() (Fingerprint, error) {
	return NewFingerprint(a.Method, a.Path, a.Payload)
}
