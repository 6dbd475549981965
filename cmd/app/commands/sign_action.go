package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/stepup/internal/auth/domain"
	authUseCase "github.com/allisson/stepup/internal/auth/usecase"
)

// RunSignAction runs the challenge/response protocol for the described
// request and prints the issued user action token. The payload argument may
// be a literal string or @file to read it from a file.
func RunSignAction(
	ctx context.Context,
	userActions authUseCase.UserActionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	method string,
	path string,
	payload string,
	format string,
) error {
	payloadBytes, err := readPayload(payload)
	if err != nil {
		return err
	}

	action := &authDomain.UserAction{
		Method:  method,
		Path:    path,
		Payload: payloadBytes,
	}

	logger.Info("signing user action",
		slog.String("method", method),
		slog.String("path", path),
	)

	token, err := userActions.SignAction(ctx, action)
	if err != nil {
		return fmt.Errorf("failed to sign action: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]any{
			"token":      token.Value,
			"issued_at":  token.IssuedAt,
			"expires_at": token.ExpiresAt,
		})
	}

	fmt.Fprintf(writer, "Token: %s\n", token.Value)
	fmt.Fprintf(writer, "Expires at: %s\n", token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
