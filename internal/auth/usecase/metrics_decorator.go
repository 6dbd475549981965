package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	"github.com/allisson/stepup/internal/metrics"
)

// userActionUseCaseWithMetrics decorates UserActionUseCase with metrics
// instrumentation.
type userActionUseCaseWithMetrics struct {
	next    UserActionUseCase
	metrics metrics.BusinessMetrics
}

// NewUserActionUseCaseWithMetrics wraps a UserActionUseCase with metrics
// recording.
func NewUserActionUseCaseWithMetrics(useCase UserActionUseCase, m metrics.BusinessMetrics) UserActionUseCase {
	return &userActionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// SignAction records metrics for the full challenge/response exchange.
func (u *userActionUseCaseWithMetrics) SignAction(
	ctx context.Context,
	action *authDomain.UserAction,
) (*authDomain.UserActionToken, error) {
	start := time.Now()
	token, err := u.next.SignAction(ctx, action)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "auth", "user_action_sign", status)
	u.metrics.RecordDuration(ctx, "auth", "user_action_sign", time.Since(start), status)

	return token, err
}

// AuthorizeExecution records metrics for local token/fingerprint checks.
func (u *userActionUseCaseWithMetrics) AuthorizeExecution(
	token *authDomain.UserActionToken,
	action *authDomain.UserAction,
) error {
	err := u.next.AuthorizeExecution(token, action)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(context.Background(), "auth", "user_action_authorize", status)

	return err
}

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics
// instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics
// recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *credentialUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordOperation(ctx, "credential", operation, status)
	c.metrics.RecordDuration(ctx, "credential", operation, time.Since(start), status)
}

func (c *credentialUseCaseWithMetrics) Register(
	ctx context.Context,
	input *authDomain.RegisterCredentialInput,
) (*authDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Register(ctx, input)
	c.record(ctx, "register", start, err)
	return credential, err
}

func (c *credentialUseCaseWithMetrics) Activate(ctx context.Context, credentialID string) error {
	start := time.Now()
	err := c.next.Activate(ctx, credentialID)
	c.record(ctx, "activate", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) Archive(ctx context.Context, credentialID string) error {
	start := time.Now()
	err := c.next.Archive(ctx, credentialID)
	c.record(ctx, "archive", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) Delegate(ctx context.Context, credentialID, userID string) error {
	start := time.Now()
	err := c.next.Delegate(ctx, credentialID, userID)
	c.record(ctx, "delegate", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) Update(
	ctx context.Context,
	credentialID string,
	input *authDomain.UpdateCredentialInput,
) (*authDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Update(ctx, credentialID, input)
	c.record(ctx, "update", start, err)
	return credential, err
}

func (c *credentialUseCaseWithMetrics) Get(ctx context.Context, credentialID string) (*authDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Get(ctx, credentialID)
	c.record(ctx, "get", start, err)
	return credential, err
}

func (c *credentialUseCaseWithMetrics) List(ctx context.Context) ([]*authDomain.Credential, error) {
	start := time.Now()
	credentials, err := c.next.List(ctx)
	c.record(ctx, "list", start, err)
	return credentials, err
}

func (c *credentialUseCaseWithMetrics) CreateRegistrationCode(ctx context.Context, userID string) (string, error) {
	start := time.Now()
	code, err := c.next.CreateRegistrationCode(ctx, userID)
	c.record(ctx, "create_registration_code", start, err)
	return code, err
}
