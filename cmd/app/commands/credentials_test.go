package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
)

func TestRunListCredentials(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		credentials := []*authDomain.Credential{
			{
				ID:        "cred-1",
				Kind:      authDomain.KeyCredential,
				Name:      "laptop key",
				Status:    authDomain.ActiveCredential,
				CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		}
		mockUseCase.On("List", ctx).Return(credentials, nil)

		var out bytes.Buffer
		err := RunListCredentials(ctx, mockUseCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "cred-1")
		require.Contains(t, out.String(), "laptop key")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("List", ctx).Return([]*authDomain.Credential{}, nil)

		var out bytes.Buffer
		err := RunListCredentials(ctx, mockUseCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "No credentials registered")
		mockUseCase.AssertExpectations(t)
	})
}

func TestRunArchiveCredential(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("Archive", ctx, "cred-1").Return(nil)

		var out bytes.Buffer
		err := RunArchiveCredential(ctx, mockUseCase, logger, &out, "cred-1")

		require.NoError(t, err)
		require.Contains(t, out.String(), "archived")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("not-found", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("Archive", ctx, "missing").Return(authDomain.ErrCredentialNotFound)

		var out bytes.Buffer
		err := RunArchiveCredential(ctx, mockUseCase, logger, &out, "missing")

		require.ErrorIs(t, err, authDomain.ErrCredentialNotFound)
		mockUseCase.AssertExpectations(t)
	})
}

func TestRunDelegateCredential(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	mockUseCase := &mockCredentialUseCase{}
	mockUseCase.On("Delegate", ctx, "cred-1", "user-2").Return(nil)

	var out bytes.Buffer
	err := RunDelegateCredential(ctx, mockUseCase, logger, &out, "cred-1", "user-2")

	require.NoError(t, err)
	require.Contains(t, out.String(), "user-2")
	mockUseCase.AssertExpectations(t)
}

func TestRunCreateRecoveryCode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("CreateRegistrationCode", ctx, "user-1").Return("ABCD-EFGH", nil)

		var out bytes.Buffer
		err := RunCreateRecoveryCode(ctx, mockUseCase, logger, &out, "user-1", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "ABCD-EFGH")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("CreateRegistrationCode", ctx, "user-1").Return("ABCD-EFGH", nil)

		var out bytes.Buffer
		err := RunCreateRecoveryCode(ctx, mockUseCase, logger, &out, "user-1", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"code": "ABCD-EFGH"`)
		mockUseCase.AssertExpectations(t)
	})
}
