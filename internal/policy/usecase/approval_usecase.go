package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/stepup/internal/config"
	apperrors "github.com/allisson/stepup/internal/errors"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// approvalUseCase implements ApprovalUseCase on top of the remote approval
// endpoints and the local snapshot store.
type approvalUseCase struct {
	config       *config.Config
	approvalAPI  ApprovalAPI
	policyAPI    PolicyAPI
	repository   ApprovalRepository
	logger       *slog.Logger
	now          func() time.Time
	pollInterval time.Duration
}

// NewApprovalUseCase creates an ApprovalUseCase with the provided
// dependencies.
func NewApprovalUseCase(
	cfg *config.Config,
	approvalAPI ApprovalAPI,
	policyAPI PolicyAPI,
	repository ApprovalRepository,
	logger *slog.Logger,
) ApprovalUseCase {
	return &approvalUseCase{
		config:       cfg,
		approvalAPI:  approvalAPI,
		policyAPI:    policyAPI,
		repository:   repository,
		logger:       logger,
		now:          time.Now,
		pollInterval: cfg.ApprovalPollInterval,
	}
}

// Track fetches the approval and freezes the triggering policies'
// configuration into the local snapshot. An already tracked approval keeps
// its original snapshot so mid-flight policy edits never alter resolution;
// only the decision log is refreshed.
func (u *approvalUseCase) Track(ctx context.Context, approvalID string) (*ApprovalView, error) {
	remote, err := u.approvalAPI.GetApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	existing, err := u.repository.Get(ctx, approvalID)
	switch {
	case err == nil:
		existing.Decisions = remote.Decisions
		existing.Evaluations = remote.Evaluations
		if err := u.repository.Update(ctx, existing); err != nil {
			return nil, err
		}
		return u.view(existing), nil
	case !errors.Is(err, policyDomain.ErrApprovalNotFound):
		return nil, err
	}

	snapshot, err := u.buildSnapshot(ctx, remote)
	if err != nil {
		return nil, err
	}
	remote.Snapshot = snapshot

	if err := u.repository.Create(ctx, remote); err != nil {
		return nil, err
	}

	u.logger.Info("approval tracked",
		slog.String("approval_id", approvalID),
		slog.Int("approval_groups", len(snapshot.ApprovalGroups)),
	)
	return u.view(remote), nil
}

// Decide enforces the append-only rules locally before the decision leaves
// the process: a duplicate, ineligible, or post-terminal decision fails
// without a network call.
func (u *approvalUseCase) Decide(
	ctx context.Context,
	approvalID string,
	decision policyDomain.ApprovalDecision,
) (*ApprovalView, error) {
	approval, err := u.tracked(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	if decision.DecidedAt.IsZero() {
		decision.DecidedAt = now
	}
	if err := approval.RecordDecision(decision, now); err != nil {
		return nil, err
	}

	remote, err := u.approvalAPI.CreateApprovalDecision(ctx, approvalID, decision)
	if err != nil {
		return nil, err
	}

	// The remote log is authoritative once the decision is accepted there.
	approval.Decisions = remote.Decisions
	approval.Evaluations = remote.Evaluations
	if err := u.repository.Update(ctx, approval); err != nil {
		return nil, err
	}

	view := u.view(approval)
	u.logger.Info("approval decision recorded",
		slog.String("approval_id", approvalID),
		slog.String("user_id", decision.UserID),
		slog.String("value", string(decision.Value)),
		slog.String("status", string(view.Status)),
	)
	return view, nil
}

// Get reads the tracked approval, resolving status lazily.
func (u *approvalUseCase) Get(ctx context.Context, approvalID string) (*ApprovalView, error) {
	approval, err := u.tracked(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	return u.view(approval), nil
}

// List reads all tracked approvals with resolved statuses.
func (u *approvalUseCase) List(ctx context.Context) ([]*ApprovalView, error) {
	approvals, err := u.repository.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*ApprovalView, 0, len(approvals))
	for _, approval := range approvals {
		views = append(views, u.view(approval))
	}
	return views, nil
}

// Watch polls the approval until it resolves. Each tick refreshes the
// decision log from the remote service; the local resolver decides the
// status so an elapsed auto-reject timeout terminates the wait even when
// the remote still reports pending.
func (u *approvalUseCase) Watch(ctx context.Context, approvalID string) (*ApprovalView, error) {
	view, err := u.Track(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if view.Status.Terminal() {
		return view, nil
	}

	ticker := time.NewTicker(u.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), "approval watch cancelled")
		case <-ticker.C:
			view, err := u.Track(ctx, approvalID)
			if err != nil {
				return nil, err
			}
			if view.Status.Terminal() {
				u.logger.Info("approval resolved",
					slog.String("approval_id", approvalID),
					slog.String("status", string(view.Status)),
				)
				return view, nil
			}
		}
	}
}

// WatchMany watches approvals concurrently; the first error cancels the
// remaining watches.
func (u *approvalUseCase) WatchMany(ctx context.Context, approvalIDs []string) (map[string]*ApprovalView, error) {
	views := make(map[string]*ApprovalView, len(approvalIDs))
	group, groupCtx := errgroup.WithContext(ctx)

	results := make(chan *ApprovalView, len(approvalIDs))
	for _, approvalID := range approvalIDs {
		group.Go(func() error {
			view, err := u.Watch(groupCtx, approvalID)
			if err != nil {
				return err
			}
			results <- view
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	close(results)
	for view := range results {
		views[view.Approval.ID] = view
	}
	return views, nil
}

// ApplyStatusEvent refreshes a tracked approval after an external
// notification reported a status change.
func (u *approvalUseCase) ApplyStatusEvent(ctx context.Context, approvalID string) (*ApprovalView, error) {
	return u.Track(ctx, approvalID)
}

// tracked loads the approval locally, tracking it on first reference.
func (u *approvalUseCase) tracked(ctx context.Context, approvalID string) (*policyDomain.Approval, error) {
	approval, err := u.repository.Get(ctx, approvalID)
	if err == nil {
		return approval, nil
	}
	if !errors.Is(err, policyDomain.ErrApprovalNotFound) {
		return nil, err
	}

	view, err := u.Track(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	return view.Approval, nil
}

// buildSnapshot copies approval-group configuration from every policy that
// triggered. The copy is what the approval resolves under from now on.
func (u *approvalUseCase) buildSnapshot(
	ctx context.Context,
	approval *policyDomain.Approval,
) (policyDomain.PolicySnapshot, error) {
	snapshot := policyDomain.PolicySnapshot{}

	for _, evaluation := range approval.Evaluations {
		if !evaluation.Triggered {
			continue
		}
		policy, err := u.policyAPI.GetPolicy(ctx, evaluation.PolicyID)
		if err != nil {
			return policyDomain.PolicySnapshot{}, err
		}
		if policy.Action.Kind != policyDomain.RequestApprovalAction {
			continue
		}

		part := policy.Snapshot()
		snapshot.PolicyID = part.PolicyID
		snapshot.ApprovalGroups = append(snapshot.ApprovalGroups, part.ApprovalGroups...)
		if part.AutoRejectTimeout > 0 &&
			(snapshot.AutoRejectTimeout == 0 || part.AutoRejectTimeout < snapshot.AutoRejectTimeout) {
			snapshot.AutoRejectTimeout = part.AutoRejectTimeout
		}
	}

	if err := snapshot.Validate(); err != nil {
		return policyDomain.PolicySnapshot{}, err
	}
	return snapshot, nil
}

func (u *approvalUseCase) view(approval *policyDomain.Approval) *ApprovalView {
	return &ApprovalView{
		Approval: approval,
		Status:   approval.Status(u.now()),
	}
}
