// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/stepup/internal/app"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// outputJSON writes v as indented JSON to the writer.
func outputJSON(writer io.Writer, v any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parseDecisionValue converts a decision value string to policyDomain.DecisionValue.
// Returns an error if the value string is invalid.
func parseDecisionValue(value string) (policyDomain.DecisionValue, error) {
	switch strings.ToLower(value) {
	case "approve", "approved":
		return policyDomain.ApprovedDecision, nil
	case "deny", "denied":
		return policyDomain.DeniedDecision, nil
	default:
		return "", fmt.Errorf("invalid decision value: %s (valid options: approve, deny)", value)
	}
}

// readPayload resolves the payload argument. A leading '@' reads the payload
// from the named file.
func readPayload(payload string) ([]byte, error) {
	if payload == "" {
		return nil, nil
	}
	if strings.HasPrefix(payload, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(payload, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return data, nil
	}
	return []byte(payload), nil
}
