package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	policyDomain "github.com/allisson/stepup/internal/policy/domain"
	policyUseCase "github.com/allisson/stepup/internal/policy/usecase"
)

// RunGetApproval shows a tracked approval with its resolved status. Unknown
// approvals are fetched and tracked first.
func RunGetApproval(
	ctx context.Context,
	approvals policyUseCase.ApprovalUseCase,
	logger *slog.Logger,
	writer io.Writer,
	approvalID string,
	format string,
) error {
	view, err := approvals.Get(ctx, approvalID)
	if err != nil {
		return fmt.Errorf("failed to get approval: %w", err)
	}

	return outputApprovalView(writer, view, format)
}

// RunListApprovals lists all tracked approvals with resolved statuses.
func RunListApprovals(
	ctx context.Context,
	approvals policyUseCase.ApprovalUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	views, err := approvals.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list approvals: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, views)
	}

	if len(views) == 0 {
		fmt.Fprintln(writer, "No tracked approvals")
		return nil
	}

	for _, view := range views {
		fmt.Fprintf(writer, "%s\t%s\t%d decision(s)\n",
			view.Approval.ID,
			view.Status,
			len(view.Approval.Decisions),
		)
	}
	return nil
}

// RunDecideApproval records an approve or deny decision on a pending
// approval. The decision is validated locally before it is submitted.
func RunDecideApproval(
	ctx context.Context,
	approvals policyUseCase.ApprovalUseCase,
	logger *slog.Logger,
	writer io.Writer,
	approvalID string,
	userID string,
	value string,
	reason string,
	format string,
) error {
	decisionValue, err := parseDecisionValue(value)
	if err != nil {
		return err
	}

	logger.Info("deciding approval",
		slog.String("approval_id", approvalID),
		slog.String("value", string(decisionValue)),
	)

	decision := policyDomain.ApprovalDecision{
		UserID:    userID,
		Value:     decisionValue,
		Reason:    reason,
		DecidedAt: time.Now().UTC(),
	}

	view, err := approvals.Decide(ctx, approvalID, decision)
	if err != nil {
		return fmt.Errorf("failed to decide approval: %w", err)
	}

	return outputApprovalView(writer, view, format)
}

// RunWatchApproval polls the approval until its status is terminal or the
// context is cancelled.
func RunWatchApproval(
	ctx context.Context,
	approvals policyUseCase.ApprovalUseCase,
	logger *slog.Logger,
	writer io.Writer,
	approvalID string,
	format string,
) error {
	logger.Info("watching approval", slog.String("approval_id", approvalID))

	view, err := approvals.Watch(ctx, approvalID)
	if err != nil {
		return fmt.Errorf("failed to watch approval: %w", err)
	}

	return outputApprovalView(writer, view, format)
}

// outputApprovalView writes the approval with its resolved status and
// decision log.
func outputApprovalView(writer io.Writer, view *policyUseCase.ApprovalView, format string) error {
	if format == "json" {
		return outputJSON(writer, view)
	}

	fmt.Fprintf(writer, "Approval: %s\n", view.Approval.ID)
	fmt.Fprintf(writer, "Status: %s\n", view.Status)
	fmt.Fprintf(writer, "Initiator: %s\n", view.Approval.InitiatorID)
	fmt.Fprintf(writer, "Created at: %s\n", view.Approval.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	for _, decision := range view.Approval.Decisions {
		fmt.Fprintf(writer, "  %s\t%s\t%s\n", decision.UserID, decision.Value, decision.Reason)
	}
	return nil
}
