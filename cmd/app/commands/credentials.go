package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/allisson/stepup/internal/auth/usecase"
)

// RunListCredentials lists the caller's registered credentials.
func RunListCredentials(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	items, err := credentials.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(writer, "No credentials registered")
		return nil
	}

	for _, credential := range items {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			credential.ID,
			credential.Kind,
			credential.Status,
			credential.Name,
		)
	}
	return nil
}

// RunArchiveCredential archives a credential. Archiving is terminal.
func RunArchiveCredential(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	credentialID string,
) error {
	logger.Info("archiving credential", slog.String("credential_id", credentialID))

	if err := credentials.Archive(ctx, credentialID); err != nil {
		return fmt.Errorf("failed to archive credential: %w", err)
	}

	fmt.Fprintf(writer, "Credential %s archived\n", credentialID)
	return nil
}

// RunDelegateCredential reassigns a credential to another user.
func RunDelegateCredential(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	credentialID string,
	userID string,
) error {
	logger.Info("delegating credential",
		slog.String("credential_id", credentialID),
		slog.String("user_id", userID),
	)

	if err := credentials.Delegate(ctx, credentialID, userID); err != nil {
		return fmt.Errorf("failed to delegate credential: %w", err)
	}

	fmt.Fprintf(writer, "Credential %s delegated to %s\n", credentialID, userID)
	return nil
}

// RunCreateRecoveryCode generates a one-time registration code for the given
// user. The plain code is printed once and never stored.
func RunCreateRecoveryCode(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	format string,
) error {
	logger.Info("creating recovery code", slog.String("user_id", userID))

	code, err := credentials.CreateRegistrationCode(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to create recovery code: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]string{
			"user_id": userID,
			"code":    code,
		})
	}

	fmt.Fprintf(writer, "Recovery code for %s: %s\n", userID, code)
	fmt.Fprintln(writer, "Store this code securely; it will not be shown again.")
	return nil
}
