package domain

import (
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/stepup/internal/validation"
)

// Rule determines when a policy triggers. Conditional configuration is
// carried opaquely; the remote service evaluates it.
type Rule struct {
	Kind          RuleKind
	Configuration json.RawMessage // Rule-specific settings, nil for AlwaysTrigger
}

// ApprovalGroup is one set of eligible approvers with its quorum and deny
// behavior. Group definitions come from the policy configuration and are
// copied into the approval snapshot at trigger time.
type ApprovalGroup struct {
	Name         string
	Approvers    []string // Eligible approver user ids, empty means any user
	Quorum       int      // Approvals required to satisfy the group
	DenyBehavior DenyBehavior
	DenyQuorum   int // Denials required when DenyBehavior is DenyThreshold
}

// Validate checks structural consistency of the group definition.
func (g *ApprovalGroup) Validate() error {
	err := validation.ValidateStruct(g,
		validation.Field(&g.Name, validation.Required),
		validation.Field(&g.Quorum, validation.Min(1)),
	)
	if err != nil {
		return appvalidation.WrapValidationError(err)
	}
	if g.DenyBehavior == DenyThreshold && g.DenyQuorum < 1 {
		return appvalidation.WrapValidationError(
			validation.NewError("validation_deny_quorum", "deny quorum must be at least 1 for threshold deny behavior"),
		)
	}
	return nil
}

// Contains reports whether the user is an eligible approver of the group.
// An empty approver list means any user is eligible.
func (g *ApprovalGroup) Contains(userID string) bool {
	if len(g.Approvers) == 0 {
		return true
	}
	for _, approver := range g.Approvers {
		if approver == userID {
			return true
		}
	}
	return false
}

// Action is what a triggered policy imposes. ApprovalGroups and the
// auto-reject timeout only apply to RequestApprovalAction.
type Action struct {
	Kind              ActionKind
	ApprovalGroups    []ApprovalGroup
	AutoRejectTimeout time.Duration // Zero means the approval never times out
}

// ChangeRequest is a pending edit of the policy that itself awaits approval.
type ChangeRequest struct {
	ID          string
	ApprovalID  string
	Kind        string // Operation requested: Update or Archive
	RequestedBy string
	CreatedAt   time.Time
}

// Policy gates activities of one kind with a rule and an action. Editing or
// archiving a policy may itself require approval, surfaced as a pending
// change request.
type Policy struct {
	ID                   string
	Name                 string
	Status               PolicyStatus
	ActivityKind         string // Activity the policy applies to, e.g. "Wallets:Transfers"
	Rule                 Rule
	Action               Action
	Filters              json.RawMessage // Optional activity filters, opaque
	PendingChangeRequest *ChangeRequest
	CreatedAt            time.Time
}

// Snapshot extracts the parts of the policy an approval resolves under. The
// copy is taken at trigger time so mid-flight policy edits never alter a
// pending approval.
func (p *Policy) Snapshot() PolicySnapshot {
	groups := make([]ApprovalGroup, len(p.Action.ApprovalGroups))
	copy(groups, p.Action.ApprovalGroups)
	return PolicySnapshot{
		PolicyID:          p.ID,
		ApprovalGroups:    groups,
		AutoRejectTimeout: p.Action.AutoRejectTimeout,
	}
}

// PolicySnapshot is the frozen rule configuration an approval resolves
// under, copied from the triggering policy when the approval is created.
type PolicySnapshot struct {
	PolicyID          string
	ApprovalGroups    []ApprovalGroup
	AutoRejectTimeout time.Duration
}

// Validate checks structural consistency of the snapshot.
func (s *PolicySnapshot) Validate() error {
	if len(s.ApprovalGroups) == 0 {
		return appvalidation.WrapValidationError(
			validation.NewError("validation_approval_groups", "snapshot requires at least one approval group"),
		)
	}
	for i := range s.ApprovalGroups {
		if err := s.ApprovalGroups[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
