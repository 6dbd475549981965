package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	authService "github.com/allisson/stepup/internal/auth/service"
	"github.com/allisson/stepup/internal/config"
	apperrors "github.com/allisson/stepup/internal/errors"
)

// attemptState tracks the authentication attempt through its state machine.
// Steps within one attempt are strictly sequential: no step starts before its
// predecessor's result is known.
type attemptState string

const (
	stateUnstarted          attemptState = "unstarted"
	stateChallengeRequested attemptState = "challenge_requested"
	stateSigned             attemptState = "signed"
	stateVerified           attemptState = "verified"
	stateTokenIssued        attemptState = "token_issued"
	stateFailed             attemptState = "failed"
)

// userActionUseCase implements UserActionUseCase.
type userActionUseCase struct {
	config       *config.Config
	api          ChallengeAPI
	builder      authService.AssertionBuilder
	signer       authService.CredentialSigner
	secondSigner authService.SecondFactorSigner
	logger       *slog.Logger
	now          func() time.Time
}

// NewUserActionUseCase creates a UserActionUseCase with the provided
// dependencies. secondSigner may be nil when no registered credential
// mandates step-up.
func NewUserActionUseCase(
	cfg *config.Config,
	api ChallengeAPI,
	builder authService.AssertionBuilder,
	signer authService.CredentialSigner,
	secondSigner authService.SecondFactorSigner,
	logger *slog.Logger,
) UserActionUseCase {
	return &userActionUseCase{
		config:       cfg,
		api:          api,
		builder:      builder,
		signer:       signer,
		secondSigner: secondSigner,
		logger:       logger,
		now:          time.Now,
	}
}

// SignAction runs the protocol:
//
//	Unstarted -> ChallengeRequested -> Signed -> Verified -> TokenIssued
//
// with terminal state Failed. An expired challenge restarts the attempt from
// ChallengeRequested with a fresh challenge, bounded by ChallengeRetryMax.
// No other step is retried.
func (u *userActionUseCase) SignAction(
	ctx context.Context,
	action *authDomain.UserAction,
) (*authDomain.UserActionToken, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	// Compute the canonical fingerprint before anything leaves the process;
	// the issued token is bound to it.
	fingerprint, err := action.Fingerprint()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= u.config.ChallengeRetryMax; attempt++ {
		token, err := u.runAttempt(ctx, action, fingerprint)
		if err == nil {
			return token, nil
		}

		// ChallengeExpired is the only condition warranting a retry: the next
		// iteration requests a fresh challenge and restarts from
		// ChallengeRequested. Everything else is terminal for the attempt.
		if !errors.Is(err, authDomain.ErrChallengeExpired) {
			return nil, err
		}

		lastErr = err
		u.logger.Debug("challenge expired, requesting a fresh one",
			slog.String("fingerprint", fingerprint.String()),
			slog.Int("attempt", attempt+1),
		)
	}

	return nil, apperrors.Wrapf(lastErr, "challenge retry budget of %d exhausted", u.config.ChallengeRetryMax)
}

// runAttempt executes one full pass of the state machine against a single
// fresh challenge.
func (u *userActionUseCase) runAttempt(
	ctx context.Context,
	action *authDomain.UserAction,
	fingerprint authDomain.Fingerprint,
) (*authDomain.UserActionToken, error) {
	state := stateUnstarted

	// Unstarted -> ChallengeRequested
	challenge, err := u.api.CreateUserActionChallenge(ctx, action)
	if err != nil {
		return nil, u.fail(fingerprint, state, err)
	}
	state = stateChallengeRequested

	// Check signer compatibility before prompting: an unsupported kind must
	// fail without user interaction or a verification round trip.
	if !challenge.AllowsKind(authDomain.FirstFactor, u.signer.Kind()) {
		return nil, u.fail(fingerprint, state, authDomain.ErrUnsupportedAssertionKind)
	}

	// ChallengeRequested -> Signed. The signer may block on user interaction
	// (hardware tap), so it gets its own timeout and honors cancellation.
	firstFactor, err := u.invokeSigner(ctx, challenge)
	if err != nil {
		return nil, u.fail(fingerprint, state, err)
	}

	var secondFactor *authDomain.Assertion
	if challenge.RequiresSecondFactor(u.signer.Kind()) {
		assertion, err := u.invokeSecondSigner(ctx, challenge)
		if err != nil {
			return nil, u.fail(fingerprint, state, err)
		}
		secondFactor = &assertion
	}
	state = stateSigned

	// The challenge handle is treated as consumed from this point on, as
	// defense in depth against local reuse; the server's nonce store is the
	// authority.
	if err := challenge.Consume(); err != nil {
		return nil, u.fail(fingerprint, state, err)
	}

	// Signed -> Verified
	tokenValue, err := u.api.CreateUserActionSignature(ctx, challenge.Identifier, firstFactor, secondFactor)
	if err != nil {
		return nil, u.fail(fingerprint, state, err)
	}
	state = stateVerified
	u.logger.Debug("assertions verified",
		slog.String("fingerprint", fingerprint.String()),
		slog.String("state", string(state)),
	)

	// Verified -> TokenIssued
	state = stateTokenIssued
	token := authDomain.NewUserActionToken(tokenValue, fingerprint, u.now(), u.config.UserActionTokenTTL)
	u.logger.Debug("user action token issued",
		slog.String("fingerprint", fingerprint.String()),
		slog.String("state", string(state)),
		slog.Time("expires_at", token.ExpiresAt),
	)

	return &token, nil
}

// invokeSigner obtains and validates the first-factor assertion.
func (u *userActionUseCase) invokeSigner(
	ctx context.Context,
	challenge *authDomain.Challenge,
) (authDomain.Assertion, error) {
	signCtx, cancel := context.WithTimeout(ctx, u.config.SignerTimeout)
	defer cancel()

	assertion, err := u.signer.Sign(signCtx, challenge)
	if err != nil {
		if errors.Is(signCtx.Err(), context.DeadlineExceeded) {
			return authDomain.Assertion{}, apperrors.Wrap(authDomain.ErrSignerUnavailable, "signer timed out")
		}
		return authDomain.Assertion{}, err
	}

	return u.builder.BuildFirstFactor(challenge, assertion)
}

// invokeSecondSigner obtains and validates the step-up assertion.
func (u *userActionUseCase) invokeSecondSigner(
	ctx context.Context,
	challenge *authDomain.Challenge,
) (authDomain.Assertion, error) {
	if u.secondSigner == nil {
		return authDomain.Assertion{}, apperrors.Wrap(
			authDomain.ErrSignerUnavailable, "challenge mandates a second factor but no second-factor signer is configured",
		)
	}
	if !challenge.AllowsKind(authDomain.SecondFactor, u.secondSigner.Kind()) {
		return authDomain.Assertion{}, authDomain.ErrUnsupportedAssertionKind
	}

	signCtx, cancel := context.WithTimeout(ctx, u.config.SignerTimeout)
	defer cancel()

	assertion, err := u.secondSigner.SignSecondFactor(signCtx, challenge)
	if err != nil {
		if errors.Is(signCtx.Err(), context.DeadlineExceeded) {
			return authDomain.Assertion{}, apperrors.Wrap(authDomain.ErrSignerUnavailable, "second-factor signer timed out")
		}
		return authDomain.Assertion{}, err
	}

	return u.builder.BuildSecondFactor(challenge, assertion)
}

// AuthorizeExecution checks that the token matches the action about to be
// executed. Fail fast: the remote service enforces the same binding, but a
// mismatched token must never be attached to an outgoing request.
func (u *userActionUseCase) AuthorizeExecution(
	token *authDomain.UserActionToken,
	action *authDomain.UserAction,
) error {
	if token == nil {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "user action token is required")
	}

	fingerprint, err := action.Fingerprint()
	if err != nil {
		return err
	}
	return token.AuthorizeExecution(fingerprint, u.now())
}

// fail records the failed transition and passes the cause through.
func (u *userActionUseCase) fail(fingerprint authDomain.Fingerprint, from attemptState, err error) error {
	u.logger.Debug("authentication attempt failed",
		slog.String("fingerprint", fingerprint.String()),
		slog.String("from_state", string(from)),
		slog.String("to_state", string(stateFailed)),
		slog.String("error", err.Error()),
	)
	return err
}
