// Package usecase defines business logic interfaces for policy management
// and the approval workflow.
package usecase

import (
	"context"

	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// ApprovalAPI defines the consumed collaborator operations for the approval
// workflow.
type ApprovalAPI interface {
	// GetApproval retrieves the remote approval snapshot. Returns
	// ErrApprovalNotFound if it does not exist.
	GetApproval(ctx context.Context, approvalID string) (*policyDomain.Approval, error)

	// CreateApprovalDecision submits a decision and returns the updated
	// approval snapshot. Returns ErrDuplicateDecision or ErrApprovalTerminal
	// on rejection.
	CreateApprovalDecision(
		ctx context.Context,
		approvalID string,
		decision policyDomain.ApprovalDecision,
	) (*policyDomain.Approval, error)

	// ListApprovals lists approvals the caller may decide on or initiated.
	ListApprovals(ctx context.Context) ([]*policyDomain.Approval, error)
}

// PolicyAPI defines the consumed collaborator operations for policy
// management.
type PolicyAPI interface {
	// GetPolicy retrieves a policy by id. Returns ErrPolicyNotFound if it
	// does not exist.
	GetPolicy(ctx context.Context, policyID string) (*policyDomain.Policy, error)

	// ListPolicies lists the organization's policies.
	ListPolicies(ctx context.Context) ([]*policyDomain.Policy, error)

	// UpdatePolicy edits a policy. When policy edits are themselves gated,
	// the returned policy carries a pending change request instead of the
	// applied edit.
	UpdatePolicy(ctx context.Context, policy *policyDomain.Policy) (*policyDomain.Policy, error)

	// ArchivePolicy archives a policy. Pending approvals created under it
	// are unaffected; they resolve under their snapshot.
	ArchivePolicy(ctx context.Context, policyID string) (*policyDomain.Policy, error)
}

// ApprovalRepository persists tracked approvals with the policy snapshot
// copied at trigger time.
type ApprovalRepository interface {
	// Create stores a newly tracked approval. Returns ErrConflict wrapped if
	// the id is already tracked.
	Create(ctx context.Context, approval *policyDomain.Approval) error

	// Update replaces the stored decision log of a tracked approval.
	Update(ctx context.Context, approval *policyDomain.Approval) error

	// Get retrieves a tracked approval. Returns ErrApprovalNotFound if the
	// id is not tracked.
	Get(ctx context.Context, approvalID string) (*policyDomain.Approval, error)

	// List retrieves all tracked approvals.
	List(ctx context.Context) ([]*policyDomain.Approval, error)
}

// ApprovalView is an approval together with its lazily resolved status.
type ApprovalView struct {
	Approval *policyDomain.Approval
	Status   policyDomain.ApprovalStatus
}

// ApprovalUseCase manages tracked approval workflows. Status is always
// recomputed from the decision log on read; a pending approval past its
// auto-reject timeout reads as auto-rejected.
type ApprovalUseCase interface {
	// Track fetches an approval from the remote service, copies the
	// triggering policies' configuration into a snapshot, and persists it
	// locally. Tracking again refreshes the decision log but keeps the
	// original snapshot.
	Track(ctx context.Context, approvalID string) (*ApprovalView, error)

	// Decide records a decision locally first (duplicates, eligibility, and
	// terminal state fail fast) and then submits it to the remote service.
	Decide(
		ctx context.Context,
		approvalID string,
		decision policyDomain.ApprovalDecision,
	) (*ApprovalView, error)

	// Get retrieves a tracked approval with its resolved status. Falls back
	// to tracking the approval when it is not yet known locally.
	Get(ctx context.Context, approvalID string) (*ApprovalView, error)

	// List retrieves all tracked approvals with resolved statuses.
	List(ctx context.Context) ([]*ApprovalView, error)

	// Watch polls the approval until its status is terminal or the context
	// is cancelled.
	Watch(ctx context.Context, approvalID string) (*ApprovalView, error)

	// WatchMany watches several approvals concurrently and returns their
	// terminal views keyed by approval id.
	WatchMany(ctx context.Context, approvalIDs []string) (map[string]*ApprovalView, error)

	// ApplyStatusEvent ingests an externally delivered status notification
	// by refreshing the tracked approval from the remote service.
	ApplyStatusEvent(ctx context.Context, approvalID string) (*ApprovalView, error)
}

// PolicyUseCase manages policies.
type PolicyUseCase interface {
	// Get retrieves a policy by id.
	Get(ctx context.Context, policyID string) (*policyDomain.Policy, error)

	// List lists the organization's policies.
	List(ctx context.Context) ([]*policyDomain.Policy, error)

	// Update edits a policy. The returned policy may carry a pending change
	// request when edits are approval-gated.
	Update(ctx context.Context, policy *policyDomain.Policy) (*policyDomain.Policy, error)

	// Archive archives a policy. Archived policies trigger no new approvals;
	// pending ones resolve under their snapshot.
	Archive(ctx context.Context, policyID string) (*policyDomain.Policy, error)
}
