// Package backend defines the printer/queue backend the gate forwards to.
//
// The backend is only ever invoked with already-authorized requests; it never
// sees credentials and performs no access checks of its own.
package backend

import "context"

// PrinterBackend executes print-management operations. Implementations return
// domain errors as-is; the gate bubbles them to the caller unchanged after a
// successful gate pass.
type PrinterBackend interface {
	// Print submits a file to the named printer's queue.
	Print(ctx context.Context, filename, printer string) error

	// Queue returns the jobs queued on the printer, one "<id> <filename>"
	// entry per line.
	Queue(ctx context.Context, printer string) (string, error)

	// TopQueue moves the job with the given id to the head of the printer's queue.
	TopQueue(ctx context.Context, printer string, job int) error

	// Start starts the print service.
	Start(ctx context.Context) error

	// Stop stops the print service.
	Stop(ctx context.Context) error

	// Restart stops the service, clears all queues, and starts it again.
	Restart(ctx context.Context) error

	// Status returns a human-readable status line for the printer.
	Status(ctx context.Context, printer string) (string, error)

	// ReadConfig returns the value of a configuration parameter.
	ReadConfig(ctx context.Context, parameter string) (string, error)

	// SetConfig sets a configuration parameter.
	SetConfig(ctx context.Context, parameter, value string) error
}
