package domain

import (
	"github.com/allisson/stepup/internal/errors"
)

// Approval workflow errors. ErrApprovalPending is a legitimate intermediate
// state rather than a failure; callers poll or wait for a notification and
// must not treat it as terminal.
var (
	// ErrPolicyBlocked indicates a blocking policy forbids the activity
	// outright. Terminal, never retried.
	ErrPolicyBlocked = errors.Wrap(errors.ErrForbidden, "activity blocked by policy")

	// ErrApprovalPending indicates the activity is deferred behind a pending
	// approval workflow.
	ErrApprovalPending = errors.Wrap(errors.ErrUnavailable, "activity pending approval")

	// ErrApprovalDenied indicates the approval workflow resolved to denied.
	// Terminal, never retried.
	ErrApprovalDenied = errors.Wrap(errors.ErrForbidden, "approval denied")

	// ErrApprovalTerminal indicates a decision arrived after the approval
	// already resolved to a denied or auto-rejected state.
	ErrApprovalTerminal = errors.Wrap(errors.ErrConflict, "approval already resolved")

	// ErrDuplicateDecision indicates the approver already decided; the first
	// decision from an approver is final.
	ErrDuplicateDecision = errors.Wrap(errors.ErrConflict, "approver already decided")

	// ErrApprovalNotFound indicates no approval with the given id exists.
	ErrApprovalNotFound = errors.Wrap(errors.ErrNotFound, "approval not found")

	// ErrPolicyNotFound indicates no policy with the given id exists.
	ErrPolicyNotFound = errors.Wrap(errors.ErrNotFound, "policy not found")

	// ErrNotEligible indicates the deciding user belongs to none of the
	// approval's required groups.
	ErrNotEligible = errors.Wrap(errors.ErrForbidden, "user is not an eligible approver")
)
