package remote

import (
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
	"github.com/allisson/stepup/internal/remote"
)

// Wire error codes the policy engine surfaces return. Registered with the
// shared client so envelope codes map onto the domain errors callers match
// with errors.Is.
func init() {
	remote.RegisterErrorCode("policy_blocked", policyDomain.ErrPolicyBlocked)
	remote.RegisterErrorCode("approval_pending", policyDomain.ErrApprovalPending)
	remote.RegisterErrorCode("approval_denied", policyDomain.ErrApprovalDenied)
	remote.RegisterErrorCode("approval_terminal", policyDomain.ErrApprovalTerminal)
	remote.RegisterErrorCode("duplicate_decision", policyDomain.ErrDuplicateDecision)
	remote.RegisterErrorCode("approval_not_found", policyDomain.ErrApprovalNotFound)
	remote.RegisterErrorCode("policy_not_found", policyDomain.ErrPolicyNotFound)
	remote.RegisterErrorCode("not_eligible", policyDomain.ErrNotEligible)
}
