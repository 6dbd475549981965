// Package repository implements persistence for tracked approvals and their
// trigger-time policy snapshots. Stores exist for in-memory use (the
// default), PostgreSQL, and MySQL.
package repository

import (
	"context"
	"sync"

	apperrors "github.com/allisson/stepup/internal/errors"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// MemoryApprovalRepository keeps tracked approvals in process memory. Useful
// for single-process CLI runs where persistence across restarts is not
// needed.
type MemoryApprovalRepository struct {
	mu        sync.RWMutex
	approvals map[string]*policyDomain.Approval
}

// NewMemoryApprovalRepository creates an empty in-memory store.
func NewMemoryApprovalRepository() *MemoryApprovalRepository {
	return &MemoryApprovalRepository{approvals: make(map[string]*policyDomain.Approval)}
}

// Create stores a newly tracked approval.
func (m *MemoryApprovalRepository) Create(_ context.Context, approval *policyDomain.Approval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.approvals[approval.ID]; ok {
		return apperrors.Wrap(apperrors.ErrConflict, "approval already tracked")
	}
	m.approvals[approval.ID] = copyApproval(approval)
	return nil
}

// Update replaces the stored approval.
func (m *MemoryApprovalRepository) Update(_ context.Context, approval *policyDomain.Approval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.approvals[approval.ID]; !ok {
		return policyDomain.ErrApprovalNotFound
	}
	m.approvals[approval.ID] = copyApproval(approval)
	return nil
}

// Get retrieves a tracked approval.
func (m *MemoryApprovalRepository) Get(_ context.Context, approvalID string) (*policyDomain.Approval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	approval, ok := m.approvals[approvalID]
	if !ok {
		return nil, policyDomain.ErrApprovalNotFound
	}
	return copyApproval(approval), nil
}

// List retrieves all tracked approvals.
func (m *MemoryApprovalRepository) List(_ context.Context) ([]*policyDomain.Approval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	approvals := make([]*policyDomain.Approval, 0, len(m.approvals))
	for _, approval := range m.approvals {
		approvals = append(approvals, copyApproval(approval))
	}
	return approvals, nil
}

// copyApproval deep-copies the approval so callers never share slices with
// the store.
func copyApproval(approval *policyDomain.Approval) *policyDomain.Approval {
	copied := *approval
	copied.Decisions = append([]policyDomain.ApprovalDecision(nil), approval.Decisions...)
	copied.Evaluations = append([]policyDomain.PolicyEvaluation(nil), approval.Evaluations...)
	copied.Snapshot.ApprovalGroups = append([]policyDomain.ApprovalGroup(nil), approval.Snapshot.ApprovalGroups...)
	return &copied
}
