package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	authService "github.com/allisson/stepup/internal/auth/service"
	"github.com/allisson/stepup/internal/config"
)

// mockChallengeAPI is a mock implementation of ChallengeAPI for testing.
type mockChallengeAPI struct {
	mock.Mock
}

func (m *mockChallengeAPI) CreateUserActionChallenge(
	ctx context.Context,
	action *authDomain.UserAction,
) (*authDomain.Challenge, error) {
	args := m.Called(ctx, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Challenge), args.Error(1)
}

func (m *mockChallengeAPI) CreateUserActionSignature(
	ctx context.Context,
	challengeID string,
	firstFactor authDomain.Assertion,
	secondFactor *authDomain.Assertion,
) (string, error) {
	args := m.Called(ctx, challengeID, firstFactor, secondFactor)
	return args.String(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		ChallengeRetryMax:  2,
		SignerTimeout:      time.Second,
		UserActionTokenTTL: 5 * time.Minute,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passwordOnlyChallenge(id string) *authDomain.Challenge {
	return &authDomain.Challenge{
		Identifier: id,
		Payload:    "cGF5bG9hZA",
		ExpiresAt:  time.Now().Add(time.Minute),
		SupportedKinds: []authDomain.SupportedKind{
			{Factor: authDomain.FirstFactor, Kind: authDomain.PasswordCredential},
		},
	}
}

func stepUpChallenge(id string) *authDomain.Challenge {
	return &authDomain.Challenge{
		Identifier: id,
		Payload:    "cGF5bG9hZA",
		ExpiresAt:  time.Now().Add(time.Minute),
		SupportedKinds: []authDomain.SupportedKind{
			{Factor: authDomain.FirstFactor, Kind: authDomain.PasswordCredential, RequiresSecondFactor: true},
			{Factor: authDomain.SecondFactor, Kind: authDomain.TOTPCredential},
		},
	}
}

func TestUserActionUseCase_SignAction(t *testing.T) {
	ctx := context.Background()
	action := &authDomain.UserAction{
		Method:  "POST",
		Path:    "/v2/wallets",
		Payload: []byte(`{"name":"ops"}`),
	}

	t.Run("Success_SingleFactor", func(t *testing.T) {
		api := &mockChallengeAPI{}
		challenge := passwordOnlyChallenge("ch-1")
		api.On("CreateUserActionChallenge", ctx, action).Return(challenge, nil).Once()
		api.On("CreateUserActionSignature", ctx, "ch-1", mock.Anything, (*authDomain.Assertion)(nil)).
			Return("token-value", nil).Once()

		useCase := NewUserActionUseCase(
			testConfig(),
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			nil,
			testLogger(),
		)

		token, err := useCase.SignAction(ctx, action)
		require.NoError(t, err)
		assert.Equal(t, "token-value", token.Value)

		// The issued token authorizes exactly this action.
		assert.NoError(t, useCase.AuthorizeExecution(token, action))
		api.AssertExpectations(t)
	})

	t.Run("Success_WithSecondFactor", func(t *testing.T) {
		api := &mockChallengeAPI{}
		challenge := stepUpChallenge("ch-2")
		api.On("CreateUserActionChallenge", ctx, action).Return(challenge, nil).Once()
		api.On("CreateUserActionSignature", ctx, "ch-2", mock.Anything, mock.MatchedBy(func(second *authDomain.Assertion) bool {
			return second != nil && second.Kind == authDomain.TOTPCredential
		})).Return("token-value", nil).Once()

		secondSigner, err := authService.NewTOTPSigner("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ")
		require.NoError(t, err)

		useCase := NewUserActionUseCase(
			testConfig(),
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			secondSigner,
			testLogger(),
		)

		token, err := useCase.SignAction(ctx, action)
		require.NoError(t, err)
		assert.Equal(t, "token-value", token.Value)
		api.AssertExpectations(t)
	})

	t.Run("Error_SecondFactorRequiredButNoSigner", func(t *testing.T) {
		api := &mockChallengeAPI{}
		api.On("CreateUserActionChallenge", ctx, action).Return(stepUpChallenge("ch-3"), nil).Once()

		useCase := NewUserActionUseCase(
			testConfig(),
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			nil,
			testLogger(),
		)

		_, err := useCase.SignAction(ctx, action)
		assert.ErrorIs(t, err, authDomain.ErrSignerUnavailable)
		api.AssertNotCalled(t, "CreateUserActionSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_SignerKindNotAllowed", func(t *testing.T) {
		// Challenge only allows key first factors; the configured signer
		// produces passwords. Must fail before any signing or verification.
		api := &mockChallengeAPI{}
		challenge := &authDomain.Challenge{
			Identifier: "ch-4",
			ExpiresAt:  time.Now().Add(time.Minute),
			SupportedKinds: []authDomain.SupportedKind{
				{Factor: authDomain.FirstFactor, Kind: authDomain.KeyCredential},
			},
		}
		api.On("CreateUserActionChallenge", ctx, action).Return(challenge, nil).Once()

		useCase := NewUserActionUseCase(
			testConfig(),
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			nil,
			testLogger(),
		)

		_, err := useCase.SignAction(ctx, action)
		assert.ErrorIs(t, err, authDomain.ErrUnsupportedAssertionKind)
		api.AssertNotCalled(t, "CreateUserActionSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Retry_ExpiredChallengeGetsAFreshOne", func(t *testing.T) {
		api := &mockChallengeAPI{}
		api.On("CreateUserActionChallenge", ctx, action).Return(passwordOnlyChallenge("ch-5a"), nil).Once()
		api.On("CreateUserActionChallenge", ctx, action).Return(passwordOnlyChallenge("ch-5b"), nil).Once()
		api.On("CreateUserActionSignature", ctx, "ch-5a", mock.Anything, (*authDomain.Assertion)(nil)).
			Return("", authDomain.ErrChallengeExpired).Once()
		api.On("CreateUserActionSignature", ctx, "ch-5b", mock.Anything, (*authDomain.Assertion)(nil)).
			Return("token-value", nil).Once()

		useCase := NewUserActionUseCase(
			testConfig(),
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			nil,
			testLogger(),
		)

		token, err := useCase.SignAction(ctx, action)
		require.NoError(t, err)
		assert.Equal(t, "token-value", token.Value)
		api.AssertExpectations(t)
	})

	t.Run("Retry_BudgetExhausted", func(t *testing.T) {
		api := &mockChallengeAPI{}
		// Each attempt gets a fresh challenge handle; the server rejects all of
		// them as expired.
		for range 3 {
			api.On("CreateUserActionChallenge", ctx, action).Return(passwordOnlyChallenge("ch-6"), nil).Once()
		}
		api.On("CreateUserActionSignature", ctx, "ch-6", mock.Anything, (*authDomain.Assertion)(nil)).
			Return("", authDomain.ErrChallengeExpired).Times(3)

		useCase := NewUserActionUseCase(
			testConfig(), // ChallengeRetryMax = 2, so three attempts total
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			nil,
			testLogger(),
		)

		_, err := useCase.SignAction(ctx, action)
		assert.ErrorIs(t, err, authDomain.ErrChallengeExpired)
		api.AssertExpectations(t)
	})

	t.Run("NoRetry_RejectedAssertionIsTerminal", func(t *testing.T) {
		api := &mockChallengeAPI{}
		api.On("CreateUserActionChallenge", ctx, action).Return(passwordOnlyChallenge("ch-7"), nil).Once()
		api.On("CreateUserActionSignature", ctx, "ch-7", mock.Anything, (*authDomain.Assertion)(nil)).
			Return("", authDomain.ErrInvalidAssertion).Once()

		useCase := NewUserActionUseCase(
			testConfig(),
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			nil,
			testLogger(),
		)

		_, err := useCase.SignAction(ctx, action)
		assert.ErrorIs(t, err, authDomain.ErrInvalidAssertion)
		// Exactly one challenge: a rejected assertion must not be retried.
		api.AssertNumberOfCalls(t, "CreateUserActionChallenge", 1)
	})

	t.Run("Error_InvalidAction", func(t *testing.T) {
		api := &mockChallengeAPI{}
		useCase := NewUserActionUseCase(
			testConfig(),
			api,
			authService.NewAssertionBuilder(),
			authService.NewStaticPasswordSigner("hunter2hunter2"),
			nil,
			testLogger(),
		)

		_, err := useCase.SignAction(ctx, &authDomain.UserAction{Method: "FETCH", Path: "/x"})
		assert.Error(t, err)
		api.AssertNotCalled(t, "CreateUserActionChallenge", mock.Anything, mock.Anything)
	})
}

func TestUserActionUseCase_AuthorizeExecution(t *testing.T) {
	useCase := NewUserActionUseCase(
		testConfig(),
		&mockChallengeAPI{},
		authService.NewAssertionBuilder(),
		authService.NewStaticPasswordSigner("hunter2hunter2"),
		nil,
		testLogger(),
	)

	action := &authDomain.UserAction{Method: "POST", Path: "/v2/wallets", Payload: []byte(`{"name":"ops"}`)}
	fingerprint, err := action.Fingerprint()
	require.NoError(t, err)

	token := authDomain.NewUserActionToken("token-value", fingerprint, time.Now(), 5*time.Minute)

	t.Run("matching action", func(t *testing.T) {
		assert.NoError(t, useCase.AuthorizeExecution(&token, action))
	})

	t.Run("different action rejected", func(t *testing.T) {
		other := &authDomain.UserAction{Method: "DELETE", Path: "/v2/wallets/w-1"}
		err := useCase.AuthorizeExecution(&token, other)
		assert.ErrorIs(t, err, authDomain.ErrTokenFingerprintMismatch)
	})

	t.Run("nil token rejected", func(t *testing.T) {
		assert.Error(t, useCase.AuthorizeExecution(nil, action))
	})
}
