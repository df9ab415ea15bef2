// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/printops/printserver/internal/app"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
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

// parseOperations converts a comma-separated list of operation names.
// Returns an error naming the first unknown operation.
func parseOperations(operationsStr string) ([]printerDomain.Operation, error) {
	var operations []printerDomain.Operation

	for _, name := range strings.Split(operationsStr, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		op, err := printerDomain.ParseOperation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid operation %q (valid options: %s)",
				name, operationNames())
		}
		operations = append(operations, op)
	}

	if len(operations) == 0 {
		return nil, fmt.Errorf("no operations given (valid options: %s)", operationNames())
	}

	return operations, nil
}

func operationNames() string {
	operations := printerDomain.Operations()
	names := make([]string, len(operations))
	for i, op := range operations {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}
