// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/stepup/internal/errors"
)

var (
	// otpCodeRegex matches a 6-digit one-time password code.
	otpCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Base64 validates that a string is valid standard base64-encoded data.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// Base64URL validates that a string is valid unpadded base64url-encoded data,
// the encoding used for challenge payloads and credential ids on the wire.
var Base64URL = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64url_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64url", "must be valid base64url-encoded data")
	}
	return nil
})

// OTPCode validates that a string is a 6-digit one-time password code.
var OTPCode = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_otp_code_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !otpCodeRegex.MatchString(s) {
		return validation.NewError("validation_otp_code", "must be a 6-digit code")
	}
	return nil
})

// HTTPMethod validates that a string is an uppercase HTTP method name.
var HTTPMethod = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_http_method_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	switch s {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return nil
	}
	return validation.NewError("validation_http_method", "must be a valid HTTP method")
})

// RequestPath validates that a string is a rooted request path without
// a scheme or host component.
var RequestPath = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_request_path_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !strings.HasPrefix(s, "/") || strings.Contains(s, "://") {
		return validation.NewError("validation_request_path", "must be a rooted path like /v2/wallets")
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			return validation.NewError("validation_request_path", "must not contain whitespace")
		}
	}
	return nil
})
