package remote

import (
	authDomain "github.com/allisson/stepup/internal/auth/domain"
	"github.com/allisson/stepup/internal/remote"
)

// Wire error codes the authentication surfaces return. Registered with the
// shared client so envelope codes map onto the domain errors callers match
// with errors.Is.
func init() {
	remote.RegisterErrorCode("challenge_expired", authDomain.ErrChallengeExpired)
	remote.RegisterErrorCode("challenge_consumed", authDomain.ErrChallengeConsumed)
	remote.RegisterErrorCode("invalid_assertion", authDomain.ErrInvalidAssertion)
	remote.RegisterErrorCode("unsupported_credential_kind", authDomain.ErrUnsupportedAssertionKind)
	remote.RegisterErrorCode("credential_not_found", authDomain.ErrCredentialNotFound)
	remote.RegisterErrorCode("credential_archived", authDomain.ErrCredentialArchived)
	remote.RegisterErrorCode("user_action_token_expired", authDomain.ErrTokenExpired)
}
