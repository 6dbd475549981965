package usecase

import (
	"context"
	"time"

	"github.com/allisson/stepup/internal/metrics"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// approvalUseCaseWithMetrics decorates ApprovalUseCase with metrics
// instrumentation.
type approvalUseCaseWithMetrics struct {
	next    ApprovalUseCase
	metrics metrics.BusinessMetrics
}

// NewApprovalUseCaseWithMetrics wraps an ApprovalUseCase with metrics
// recording.
func NewApprovalUseCaseWithMetrics(useCase ApprovalUseCase, m metrics.BusinessMetrics) ApprovalUseCase {
	return &approvalUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *approvalUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, "approval", operation, status)
	a.metrics.RecordDuration(ctx, "approval", operation, time.Since(start), status)
}

func (a *approvalUseCaseWithMetrics) Track(ctx context.Context, approvalID string) (*ApprovalView, error) {
	start := time.Now()
	view, err := a.next.Track(ctx, approvalID)
	a.record(ctx, "track", start, err)
	return view, err
}

func (a *approvalUseCaseWithMetrics) Decide(
	ctx context.Context,
	approvalID string,
	decision policyDomain.ApprovalDecision,
) (*ApprovalView, error) {
	start := time.Now()
	view, err := a.next.Decide(ctx, approvalID, decision)
	a.record(ctx, "decide", start, err)
	return view, err
}

func (a *approvalUseCaseWithMetrics) Get(ctx context.Context, approvalID string) (*ApprovalView, error) {
	start := time.Now()
	view, err := a.next.Get(ctx, approvalID)
	a.record(ctx, "get", start, err)
	return view, err
}

func (a *approvalUseCaseWithMetrics) List(ctx context.Context) ([]*ApprovalView, error) {
	start := time.Now()
	views, err := a.next.List(ctx)
	a.record(ctx, "list", start, err)
	return views, err
}

func (a *approvalUseCaseWithMetrics) Watch(ctx context.Context, approvalID string) (*ApprovalView, error) {
	start := time.Now()
	view, err := a.next.Watch(ctx, approvalID)
	a.record(ctx, "watch", start, err)
	return view, err
}

func (a *approvalUseCaseWithMetrics) WatchMany(
	ctx context.Context,
	approvalIDs []string,
) (map[string]*ApprovalView, error) {
	start := time.Now()
	views, err := a.next.WatchMany(ctx, approvalIDs)
	a.record(ctx, "watch_many", start, err)
	return views, err
}

func (a *approvalUseCaseWithMetrics) ApplyStatusEvent(
	ctx context.Context,
	approvalID string,
) (*ApprovalView, error) {
	start := time.Now()
	view, err := a.next.ApplyStatusEvent(ctx, approvalID)
	a.record(ctx, "apply_status_event", start, err)
	return view, err
}

// policyUseCaseWithMetrics decorates PolicyUseCase with metrics
// instrumentation.
type policyUseCaseWithMetrics struct {
	next    PolicyUseCase
	metrics metrics.BusinessMetrics
}

// NewPolicyUseCaseWithMetrics wraps a PolicyUseCase with metrics recording.
func NewPolicyUseCaseWithMetrics(useCase PolicyUseCase, m metrics.BusinessMetrics) PolicyUseCase {
	return &policyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *policyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordOperation(ctx, "policy", operation, status)
	p.metrics.RecordDuration(ctx, "policy", operation, time.Since(start), status)
}

func (p *policyUseCaseWithMetrics) Get(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	start := time.Now()
	policy, err := p.next.Get(ctx, policyID)
	p.record(ctx, "get", start, err)
	return policy, err
}

func (p *policyUseCaseWithMetrics) List(ctx context.Context) ([]*policyDomain.Policy, error) {
	start := time.Now()
	policies, err := p.next.List(ctx)
	p.record(ctx, "list", start, err)
	return policies, err
}

func (p *policyUseCaseWithMetrics) Update(
	ctx context.Context,
	policy *policyDomain.Policy,
) (*policyDomain.Policy, error) {
	start := time.Now()
	updated, err := p.next.Update(ctx, policy)
	p.record(ctx, "update", start, err)
	return updated, err
}

func (p *policyUseCaseWithMetrics) Archive(
	ctx context.Context,
	policyID string,
) (*policyDomain.Policy, error) {
	start := time.Now()
	archived, err := p.next.Archive(ctx, policyID)
	p.record(ctx, "archive", start, err)
	return archived, err
}
