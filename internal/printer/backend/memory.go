package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/printops/printserver/internal/errors"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

// Backend error conditions surfaced to callers after a successful gate pass.
var (
	// ErrServiceStopped indicates the print service is not running.
	ErrServiceStopped = errors.Wrap(printerDomain.ErrBackend, "print service is stopped")

	// ErrJobNotFound indicates no job with the given id is queued on the printer.
	ErrJobNotFound = errors.Wrap(printerDomain.ErrBackend, "job not found")

	// ErrParameterNotFound indicates the configuration parameter is not set.
	ErrParameterNotFound = errors.Wrap(printerDomain.ErrBackend, "parameter not found")
)

// job is one queued print job.
type job struct {
	id       int
	filename string
}

// MemoryBackend is an in-memory PrinterBackend with per-printer FIFO queues,
// a running flag, and a configuration parameter map. Safe for concurrent use.
type MemoryBackend struct {
	mu      sync.Mutex
	running bool
	nextID  int
	queues  map[string][]job
	config  map[string]string
}

// NewMemoryBackend creates a started MemoryBackend with empty queues.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		running: true,
		nextID:  1,
		queues:  make(map[string][]job),
		config:  make(map[string]string),
	}
}

// Print appends a job to the printer's queue.
func (b *MemoryBackend) Print(ctx context.Context, filename, printer string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return ErrServiceStopped
	}

	b.queues[printer] = append(b.queues[printer], job{id: b.nextID, filename: filename})
	b.nextID++
	return nil
}

// Queue returns the printer's queue, one "<id> <filename>" entry per line.
func (b *MemoryBackend) Queue(ctx context.Context, printer string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return "", ErrServiceStopped
	}

	var sb strings.Builder
	for i, j := range b.queues[printer] {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d %s", j.id, j.filename)
	}
	return sb.String(), nil
}

// TopQueue moves the job with the given id to the head of the printer's queue.
func (b *MemoryBackend) TopQueue(ctx context.Context, printer string, jobID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return ErrServiceStopped
	}

	queue := b.queues[printer]
	for i, j := range queue {
		if j.id == jobID {
			copy(queue[1:i+1], queue[:i])
			queue[0] = j
			return nil
		}
	}
	return ErrJobNotFound
}

// Start starts the print service. Starting a running service is a no-op.
func (b *MemoryBackend) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.running = true
	return nil
}

// Stop stops the print service. Queued jobs are retained.
func (b *MemoryBackend) Stop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.running = false
	return nil
}

// Restart clears all queues and starts the service.
func (b *MemoryBackend) Restart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.queues = make(map[string][]job)
	b.running = true
	return nil
}

// Status reports the service state and the printer's queue depth.
func (b *MemoryBackend) Status(ctx context.Context, printer string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	state := "running"
	if !b.running {
		state = "stopped"
	}
	return fmt.Sprintf("printer %s: %s, %d job(s) queued", printer, state, len(b.queues[printer])), nil
}

// ReadConfig returns the value of a configuration parameter.
func (b *MemoryBackend) ReadConfig(ctx context.Context, parameter string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	value, ok := b.config[parameter]
	if !ok {
		return "", ErrParameterNotFound
	}
	return value, nil
}

// SetConfig sets a configuration parameter.
func (b *MemoryBackend) SetConfig(ctx context.Context, parameter, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.config[parameter] = value
	return nil
}
