package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/stepup/internal/validation"
)

// ApprovalDecision is one approver's verdict. Decisions are append-only; the
// first decision from an approver is final.
type ApprovalDecision struct {
	UserID    string
	Value     DecisionValue
	Reason    string
	DecidedAt time.Time
}

// Validate checks structural consistency of the decision.
func (d *ApprovalDecision) Validate() error {
	err := validation.ValidateStruct(d,
		validation.Field(&d.UserID, validation.Required),
		validation.Field(&d.Value, validation.Required, validation.By(validDecisionValue)),
	)
	return appvalidation.WrapValidationError(err)
}

// PolicyEvaluation records whether one policy triggered for the activity.
type PolicyEvaluation struct {
	PolicyID  string
	Triggered bool
	Reason    string
}

// Approval is the workflow instance collecting decisions toward the quorums
// of its required approval groups. Status is never stored as independently
// mutable state; it is recomputed from the decision log and the policy
// snapshot on every read, so concurrent decisions resolve with equivalent
// effect regardless of arrival order.
type Approval struct {
	ID          string
	InitiatorID string
	Snapshot    PolicySnapshot // Frozen at trigger time
	Decisions   []ApprovalDecision
	Evaluations []PolicyEvaluation
	CreatedAt   time.Time
}

// Status resolves the approval at the given instant from the accumulated
// decision log.
func (a *Approval) Status(now time.Time) ApprovalStatus {
	return ResolveStatus(a.Snapshot.ApprovalGroups, a.Decisions, a.CreatedAt, a.Snapshot.AutoRejectTimeout, now)
}

// RecordDecision appends a decision to the log after enforcing the
// append-only rules:
//
//   - an approver decides at most once (ErrDuplicateDecision);
//   - the approver must be eligible in at least one group (ErrNotEligible);
//   - denied and auto-rejected approvals accept no further decisions
//     (ErrApprovalTerminal). An approved approval still accepts decisions
//     from remaining approvers; they do not alter the terminal status.
func (a *Approval) RecordDecision(decision ApprovalDecision, now time.Time) error {
	if err := decision.Validate(); err != nil {
		return err
	}

	for _, existing := range a.Decisions {
		if existing.UserID == decision.UserID {
			return ErrDuplicateDecision
		}
	}

	if !a.eligible(decision.UserID) {
		return ErrNotEligible
	}

	switch a.Status(now) {
	case DeniedApproval, AutoRejectedApproval, ExpiredApproval:
		return ErrApprovalTerminal
	}

	a.Decisions = append(a.Decisions, decision)
	return nil
}

func (a *Approval) eligible(userID string) bool {
	for i := range a.Snapshot.ApprovalGroups {
		if a.Snapshot.ApprovalGroups[i].Contains(userID) {
			return true
		}
	}
	return false
}

// ResolveStatus is the pure resolver from a decision log to a status.
//
// Denial precedence: denials are evaluated across all groups before any
// quorum check, so a qualifying denial wins even when approvals reaching
// quorum were recorded earlier. The approval is Approved only when every
// group's quorum is met by its own members' approvals. A still-pending
// approval past the auto-reject timeout resolves to AutoRejected; the
// transition is detected lazily on read, never left reported as Pending.
func ResolveStatus(
	groups []ApprovalGroup,
	decisions []ApprovalDecision,
	createdAt time.Time,
	timeout time.Duration,
	now time.Time,
) ApprovalStatus {
	for i := range groups {
		if groupDenied(&groups[i], decisions) {
			return DeniedApproval
		}
	}

	satisfied := true
	for i := range groups {
		if groupApprovals(&groups[i], decisions) < groups[i].Quorum {
			satisfied = false
			break
		}
	}
	if len(groups) > 0 && satisfied {
		return ApprovedApproval
	}

	if timeout > 0 && now.Sub(createdAt) > timeout {
		return AutoRejectedApproval
	}
	return PendingApproval
}

func groupDenied(group *ApprovalGroup, decisions []ApprovalDecision) bool {
	denials := 0
	for _, d := range decisions {
		if d.Value == DeniedDecision && group.Contains(d.UserID) {
			denials++
		}
	}
	switch group.DenyBehavior {
	case DenyThreshold:
		return group.DenyQuorum > 0 && denials >= group.DenyQuorum
	default:
		// Short-circuit is the default: any single denial resolves the group.
		return denials > 0
	}
}

func groupApprovals(group *ApprovalGroup, decisions []ApprovalDecision) int {
	approvals := 0
	for _, d := range decisions {
		if d.Value == ApprovedDecision && group.Contains(d.UserID) {
			approvals++
		}
	}
	return approvals
}

func validDecisionValue(value interface{}) error {
	v, ok := value.(DecisionValue)
	if !ok || !v.Valid() {
		return validation.NewError("validation_decision_value", "must be Approved or Denied")
	}
	return nil
}
