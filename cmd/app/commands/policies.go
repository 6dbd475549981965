package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	policyDomain "github.com/allisson/stepup/internal/policy/domain"
	policyUseCase "github.com/allisson/stepup/internal/policy/usecase"
)

// RunGetPolicy shows a policy.
func RunGetPolicy(
	ctx context.Context,
	policies policyUseCase.PolicyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	policyID string,
	format string,
) error {
	policy, err := policies.Get(ctx, policyID)
	if err != nil {
		return fmt.Errorf("failed to get policy: %w", err)
	}

	return outputPolicy(writer, policy, format)
}

// RunListPolicies lists the organization's policies.
func RunListPolicies(
	ctx context.Context,
	policies policyUseCase.PolicyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	items, err := policies.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list policies: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(writer, "No policies")
		return nil
	}

	for _, policy := range items {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			policy.ID,
			policy.Status,
			policy.ActivityKind,
			policy.Name,
		)
	}
	return nil
}

// RunArchivePolicy archives a policy. Pending approvals created under it
// resolve under their snapshot.
func RunArchivePolicy(
	ctx context.Context,
	policies policyUseCase.PolicyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	policyID string,
	format string,
) error {
	logger.Info("archiving policy", slog.String("policy_id", policyID))

	policy, err := policies.Archive(ctx, policyID)
	if err != nil {
		return fmt.Errorf("failed to archive policy: %w", err)
	}

	return outputPolicy(writer, policy, format)
}

// outputPolicy writes a single policy in the selected format.
func outputPolicy(writer io.Writer, policy *policyDomain.Policy, format string) error {
	if format == "json" {
		return outputJSON(writer, policy)
	}

	fmt.Fprintf(writer, "Policy: %s\n", policy.ID)
	fmt.Fprintf(writer, "Name: %s\n", policy.Name)
	fmt.Fprintf(writer, "Status: %s\n", policy.Status)
	fmt.Fprintf(writer, "Activity kind: %s\n", policy.ActivityKind)
	fmt.Fprintf(writer, "Rule: %s\n", policy.Rule.Kind)
	fmt.Fprintf(writer, "Action: %s\n", policy.Action.Kind)
	if policy.PendingChangeRequest != nil {
		fmt.Fprintf(writer, "Pending change request: %s\n", policy.PendingChangeRequest.ApprovalID)
	}
	return nil
}
