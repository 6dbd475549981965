package usecase

import (
	"context"
	"log/slog"

	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// policyUseCase implements PolicyUseCase over the remote policy endpoints.
type policyUseCase struct {
	api    PolicyAPI
	logger *slog.Logger
}

// NewPolicyUseCase creates a PolicyUseCase with the provided dependencies.
func NewPolicyUseCase(api PolicyAPI, logger *slog.Logger) PolicyUseCase {
	return &policyUseCase{api: api, logger: logger}
}

// Get retrieves a policy by id.
func (p *policyUseCase) Get(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	return p.api.GetPolicy(ctx, policyID)
}

// List lists the organization's policies.
func (p *policyUseCase) List(ctx context.Context) ([]*policyDomain.Policy, error) {
	return p.api.ListPolicies(ctx)
}

// Update edits a policy. When the edit is itself approval-gated, the
// returned policy carries a pending change request and the stored
// configuration is unchanged until that approval resolves.
func (p *policyUseCase) Update(
	ctx context.Context,
	policy *policyDomain.Policy,
) (*policyDomain.Policy, error) {
	updated, err := p.api.UpdatePolicy(ctx, policy)
	if err != nil {
		return nil, err
	}

	if updated.PendingChangeRequest != nil {
		p.logger.Info("policy edit pending approval",
			slog.String("policy_id", updated.ID),
			slog.String("approval_id", updated.PendingChangeRequest.ApprovalID),
		)
	}
	return updated, nil
}

// Archive archives a policy. Approvals pending under the policy resolve
// under their trigger-time snapshot.
func (p *policyUseCase) Archive(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	archived, err := p.api.ArchivePolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}

	p.logger.Info("policy archived", slog.String("policy_id", policyID))
	return archived, nil
}
