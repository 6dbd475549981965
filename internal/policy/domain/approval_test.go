package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anyOneGroup(approvers ...string) ApprovalGroup {
	return ApprovalGroup{
		Name:      "operators",
		Approvers: approvers,
		Quorum:    1,
	}
}

func newTestApproval(groups ...ApprovalGroup) *Approval {
	return &Approval{
		ID:          "ap-1",
		InitiatorID: "us-0",
		Snapshot: PolicySnapshot{
			PolicyID:          "plc-1",
			ApprovalGroups:    groups,
			AutoRejectTimeout: 7200 * time.Second,
		},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolveStatus(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	timeout := 7200 * time.Second

	t.Run("AnyOneQuorum_FirstApprovalResolves", func(t *testing.T) {
		groups := []ApprovalGroup{anyOneGroup("u1", "u2", "u3")}
		decisions := []ApprovalDecision{{UserID: "u1", Value: ApprovedDecision, DecidedAt: createdAt}}
		assert.Equal(t, ApprovedApproval, ResolveStatus(groups, decisions, createdAt, timeout, createdAt))
	})

	t.Run("AllGroupsMustBeSatisfied", func(t *testing.T) {
		groups := []ApprovalGroup{
			anyOneGroup("u1", "u2"),
			{Name: "compliance", Approvers: []string{"u3", "u4"}, Quorum: 2},
		}
		decisions := []ApprovalDecision{
			{UserID: "u1", Value: ApprovedDecision},
			{UserID: "u3", Value: ApprovedDecision},
		}
		assert.Equal(t, PendingApproval, ResolveStatus(groups, decisions, createdAt, timeout, createdAt))

		decisions = append(decisions, ApprovalDecision{UserID: "u4", Value: ApprovedDecision})
		assert.Equal(t, ApprovedApproval, ResolveStatus(groups, decisions, createdAt, timeout, createdAt))
	})

	t.Run("DenyShortCircuit_SingleDenialWins", func(t *testing.T) {
		// Two approvals already reached quorum, but a denial from a required
		// approver has precedence regardless of processing order.
		groups := []ApprovalGroup{{Name: "operators", Approvers: []string{"u1", "u2", "u3"}, Quorum: 1}}
		decisions := []ApprovalDecision{
			{UserID: "u1", Value: ApprovedDecision},
			{UserID: "u2", Value: ApprovedDecision},
			{UserID: "u3", Value: DeniedDecision},
		}
		assert.Equal(t, DeniedApproval, ResolveStatus(groups, decisions, createdAt, timeout, createdAt))
	})

	t.Run("DenyThreshold_BelowQuorumStaysPending", func(t *testing.T) {
		groups := []ApprovalGroup{{
			Name:         "operators",
			Approvers:    []string{"u1", "u2", "u3"},
			Quorum:       3,
			DenyBehavior: DenyThreshold,
			DenyQuorum:   2,
		}}
		decisions := []ApprovalDecision{{UserID: "u1", Value: DeniedDecision}}
		assert.Equal(t, PendingApproval, ResolveStatus(groups, decisions, createdAt, timeout, createdAt))

		decisions = append(decisions, ApprovalDecision{UserID: "u2", Value: DeniedDecision})
		assert.Equal(t, DeniedApproval, ResolveStatus(groups, decisions, createdAt, timeout, createdAt))
	})

	t.Run("AutoReject_LazyOnRead", func(t *testing.T) {
		groups := []ApprovalGroup{anyOneGroup("u1", "u2")}

		// One second before the timeout elapses the approval is still pending.
		at := createdAt.Add(7199 * time.Second)
		assert.Equal(t, PendingApproval, ResolveStatus(groups, nil, createdAt, timeout, at))

		// One second past the timeout with zero decisions it reads as
		// auto-rejected, never pending.
		at = createdAt.Add(7201 * time.Second)
		assert.Equal(t, AutoRejectedApproval, ResolveStatus(groups, nil, createdAt, timeout, at))
	})

	t.Run("ResolvedBeforeTimeoutStaysResolved", func(t *testing.T) {
		groups := []ApprovalGroup{anyOneGroup("u1", "u2")}
		decisions := []ApprovalDecision{{UserID: "u1", Value: ApprovedDecision}}
		at := createdAt.Add(9999 * time.Second)
		assert.Equal(t, ApprovedApproval, ResolveStatus(groups, decisions, createdAt, timeout, at))
	})

	t.Run("ZeroTimeoutNeverAutoRejects", func(t *testing.T) {
		groups := []ApprovalGroup{anyOneGroup("u1")}
		at := createdAt.Add(24 * 365 * time.Hour)
		assert.Equal(t, PendingApproval, ResolveStatus(groups, nil, createdAt, 0, at))
	})
}

func TestApproval_RecordDecision(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		approval := newTestApproval(anyOneGroup("u1", "u2"))
		err := approval.RecordDecision(ApprovalDecision{UserID: "u1", Value: ApprovedDecision, DecidedAt: now}, now)
		require.NoError(t, err)
		assert.Equal(t, ApprovedApproval, approval.Status(now))
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		approval := newTestApproval(ApprovalGroup{Name: "operators", Approvers: []string{"u1", "u2"}, Quorum: 2})
		require.NoError(t, approval.RecordDecision(ApprovalDecision{UserID: "u1", Value: ApprovedDecision}, now))

		// The first decision from an approver is final, even if the verdict
		// differs.
		err := approval.RecordDecision(ApprovalDecision{UserID: "u1", Value: DeniedDecision}, now)
		assert.ErrorIs(t, err, ErrDuplicateDecision)
		assert.Len(t, approval.Decisions, 1)
	})

	t.Run("IneligibleApproverRejected", func(t *testing.T) {
		approval := newTestApproval(anyOneGroup("u1", "u2"))
		err := approval.RecordDecision(ApprovalDecision{UserID: "intruder", Value: ApprovedDecision}, now)
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("DeniedApprovalRejectsFurtherDecisions", func(t *testing.T) {
		approval := newTestApproval(anyOneGroup("u1", "u2"))
		require.NoError(t, approval.RecordDecision(ApprovalDecision{UserID: "u1", Value: DeniedDecision}, now))

		err := approval.RecordDecision(ApprovalDecision{UserID: "u2", Value: ApprovedDecision}, now)
		assert.ErrorIs(t, err, ErrApprovalTerminal)
	})

	t.Run("ApprovedApprovalStillAcceptsDecisions", func(t *testing.T) {
		approval := newTestApproval(anyOneGroup("u1", "u2"))
		require.NoError(t, approval.RecordDecision(ApprovalDecision{UserID: "u1", Value: ApprovedDecision}, now))
		require.NoError(t, approval.RecordDecision(ApprovalDecision{UserID: "u2", Value: ApprovedDecision}, now))

		// The terminal status is unchanged by the late decision.
		assert.Equal(t, ApprovedApproval, approval.Status(now))
		assert.Len(t, approval.Decisions, 2)
	})

	t.Run("AutoRejectedRejectsDecisions", func(t *testing.T) {
		approval := newTestApproval(anyOneGroup("u1"))
		late := approval.CreatedAt.Add(7201 * time.Second)
		err := approval.RecordDecision(ApprovalDecision{UserID: "u1", Value: ApprovedDecision}, late)
		assert.ErrorIs(t, err, ErrApprovalTerminal)
	})
}

func TestApprovalGroup_Validate(t *testing.T) {
	tests := []struct {
		name    string
		group   ApprovalGroup
		wantErr bool
	}{
		{"valid", ApprovalGroup{Name: "operators", Quorum: 1}, false},
		{"missing name", ApprovalGroup{Quorum: 1}, true},
		{"zero quorum", ApprovalGroup{Name: "operators"}, true},
		{"threshold without deny quorum", ApprovalGroup{Name: "operators", Quorum: 1, DenyBehavior: DenyThreshold}, true},
		{"threshold with deny quorum", ApprovalGroup{Name: "operators", Quorum: 1, DenyBehavior: DenyThreshold, DenyQuorum: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.group.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_Snapshot(t *testing.T) {
	policy := &Policy{
		ID:           "plc-1",
		Name:         "transfers need sign-off",
		Status:       ActivePolicy,
		ActivityKind: "Wallets:Transfers",
		Rule:         Rule{Kind: AlwaysTriggerRule},
		Action: Action{
			Kind:              RequestApprovalAction,
			ApprovalGroups:    []ApprovalGroup{anyOneGroup("u1", "u2")},
			AutoRejectTimeout: 7200 * time.Second,
		},
	}

	snapshot := policy.Snapshot()
	require.NoError(t, snapshot.Validate())

	// Editing the policy after the snapshot was taken must not leak into a
	// pending approval.
	policy.Action.ApprovalGroups[0].Quorum = 99
	assert.Equal(t, 1, snapshot.ApprovalGroups[0].Quorum)
}
