package domain

// PolicyStatus is the lifecycle status of a policy.
type PolicyStatus string

const (
	ActivePolicy   PolicyStatus = "Active"
	ArchivedPolicy PolicyStatus = "Archived"
)

// RuleKind determines when a policy triggers.
type RuleKind string

const (
	// AlwaysTriggerRule triggers on every matching activity.
	AlwaysTriggerRule RuleKind = "AlwaysTrigger"

	// ConditionalRule triggers when its configuration matches the activity.
	// The configuration is opaque to this client; the remote service
	// evaluates it.
	ConditionalRule RuleKind = "Conditional"
)

// ActionKind is what a triggered policy imposes on the activity.
type ActionKind string

const (
	// RequestApprovalAction defers the activity behind an approval workflow.
	RequestApprovalAction ActionKind = "RequestApproval"

	// AllowAction lets the activity proceed.
	AllowAction ActionKind = "Allow"

	// BlockAction forbids the activity outright.
	BlockAction ActionKind = "Block"
)

// ApprovalStatus is the resolved state of an approval workflow.
type ApprovalStatus string

const (
	PendingApproval      ApprovalStatus = "Pending"
	ApprovedApproval     ApprovalStatus = "Approved"
	DeniedApproval       ApprovalStatus = "Denied"
	AutoRejectedApproval ApprovalStatus = "AutoRejected"
	ExpiredApproval      ApprovalStatus = "Expired"
)

// Terminal reports whether the status admits no further transitions.
func (s ApprovalStatus) Terminal() bool {
	switch s {
	case ApprovedApproval, DeniedApproval, AutoRejectedApproval, ExpiredApproval:
		return true
	default:
		return false
	}
}

// DecisionValue is an approver's verdict.
type DecisionValue string

const (
	ApprovedDecision DecisionValue = "Approved"
	DeniedDecision   DecisionValue = "Denied"
)

// Valid reports whether the value belongs to the closed verdict set.
func (v DecisionValue) Valid() bool {
	return v == ApprovedDecision || v == DeniedDecision
}

// DenyBehavior determines how denials resolve an approval group.
type DenyBehavior string

const (
	// DenyShortCircuit resolves the group as denied on any single denial
	// from a member, regardless of accumulated approvals.
	DenyShortCircuit DenyBehavior = "ShortCircuit"

	// DenyThreshold resolves the group as denied once the group's
	// DenyQuorum denials have accumulated.
	DenyThreshold DenyBehavior = "Threshold"
)
