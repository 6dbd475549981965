package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
)

func TestRunSignAction(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("text", func(t *testing.T) {
		mockUseCase := &mockUserActionUseCase{}
		action := &authDomain.UserAction{
			Method:  "POST",
			Path:    "/wallets/w-1/transfers",
			Payload: []byte(`{"amount":100}`),
		}
		token := &authDomain.UserActionToken{
			Value:     "ua-token",
			IssuedAt:  issuedAt,
			ExpiresAt: issuedAt.Add(5 * time.Minute),
		}

		mockUseCase.On("SignAction", ctx, action).Return(token, nil)

		var out bytes.Buffer
		err := RunSignAction(
			ctx,
			mockUseCase,
			logger,
			&out,
			"POST",
			"/wallets/w-1/transfers",
			`{"amount":100}`,
			"text",
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), "ua-token")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &mockUserActionUseCase{}
		action := &authDomain.UserAction{
			Method: "DELETE",
			Path:   "/wallets/w-1",
		}
		token := &authDomain.UserActionToken{
			Value:     "ua-token",
			IssuedAt:  issuedAt,
			ExpiresAt: issuedAt.Add(5 * time.Minute),
		}

		mockUseCase.On("SignAction", ctx, action).Return(token, nil)

		var out bytes.Buffer
		err := RunSignAction(ctx, mockUseCase, logger, &out, "DELETE", "/wallets/w-1", "", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"token": "ua-token"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("payload-from-file", func(t *testing.T) {
		payloadFile := filepath.Join(t.TempDir(), "payload.json")
		require.NoError(t, os.WriteFile(payloadFile, []byte(`{"amount":250}`), 0o600))

		mockUseCase := &mockUserActionUseCase{}
		action := &authDomain.UserAction{
			Method:  "POST",
			Path:    "/wallets/w-1/transfers",
			Payload: []byte(`{"amount":250}`),
		}
		token := &authDomain.UserActionToken{Value: "ua-token", IssuedAt: issuedAt, ExpiresAt: issuedAt}

		mockUseCase.On("SignAction", ctx, action).Return(token, nil)

		var out bytes.Buffer
		err := RunSignAction(
			ctx,
			mockUseCase,
			logger,
			&out,
			"POST",
			"/wallets/w-1/transfers",
			"@"+payloadFile,
			"text",
		)

		require.NoError(t, err)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("missing-payload-file", func(t *testing.T) {
		mockUseCase := &mockUserActionUseCase{}

		var out bytes.Buffer
		err := RunSignAction(
			ctx,
			mockUseCase,
			logger,
			&out,
			"POST",
			"/wallets/w-1/transfers",
			"@/nonexistent/payload.json",
			"text",
		)

		require.Error(t, err)
		mockUseCase.AssertNotCalled(t, "SignAction")
	})

	t.Run("signing-error", func(t *testing.T) {
		mockUseCase := &mockUserActionUseCase{}
		mockUseCase.On("SignAction", ctx, &authDomain.UserAction{Method: "GET", Path: "/x"}).
			Return(nil, authDomain.ErrInvalidAssertion)

		var out bytes.Buffer
		err := RunSignAction(ctx, mockUseCase, logger, &out, "GET", "/x", "", "text")

		require.ErrorIs(t, err, authDomain.ErrInvalidAssertion)
		mockUseCase.AssertExpectations(t)
	})
}
