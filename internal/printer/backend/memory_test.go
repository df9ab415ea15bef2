package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	printerDomain "github.com/printops/printserver/internal/printer/domain"
)

func TestMemoryBackend_PrintAndQueue(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Print(ctx, "report.pdf", "office"))
	require.NoError(t, b.Print(ctx, "invoice.pdf", "office"))
	require.NoError(t, b.Print(ctx, "poster.pdf", "lobby"))

	queue, err := b.Queue(ctx, "office")
	require.NoError(t, err)
	assert.Equal(t, "1 report.pdf\n2 invoice.pdf", queue)

	queue, err = b.Queue(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, "3 poster.pdf", queue)
}

func TestMemoryBackend_Queue_EmptyPrinter(t *testing.T) {
	b := NewMemoryBackend()

	queue, err := b.Queue(context.Background(), "office")
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestMemoryBackend_TopQueue(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Print(ctx, "a.pdf", "office"))
	require.NoError(t, b.Print(ctx, "b.pdf", "office"))
	require.NoError(t, b.Print(ctx, "c.pdf", "office"))

	require.NoError(t, b.TopQueue(ctx, "office", 3))

	queue, err := b.Queue(ctx, "office")
	require.NoError(t, err)
	assert.Equal(t, "3 c.pdf\n1 a.pdf\n2 b.pdf", queue)
}

func TestMemoryBackend_TopQueue_UnknownJob(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Print(ctx, "a.pdf", "office"))

	err := b.TopQueue(ctx, "office", 42)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, err, printerDomain.ErrBackend)
}

func TestMemoryBackend_StopBlocksOperations(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Stop(ctx))

	assert.ErrorIs(t, b.Print(ctx, "a.pdf", "office"), ErrServiceStopped)
	_, err := b.Queue(ctx, "office")
	assert.ErrorIs(t, err, ErrServiceStopped)

	// Status still reports while stopped.
	status, err := b.Status(ctx, "office")
	require.NoError(t, err)
	assert.Contains(t, status, "stopped")

	require.NoError(t, b.Start(ctx))
	assert.NoError(t, b.Print(ctx, "a.pdf", "office"))
}

func TestMemoryBackend_RestartClearsQueues(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Print(ctx, "a.pdf", "office"))
	require.NoError(t, b.Stop(ctx))
	require.NoError(t, b.Restart(ctx))

	queue, err := b.Queue(ctx, "office")
	require.NoError(t, err)
	assert.Empty(t, queue)

	status, err := b.Status(ctx, "office")
	require.NoError(t, err)
	assert.Contains(t, status, "running")
}

func TestMemoryBackend_Config(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	_, err := b.ReadConfig(ctx, "paper-size")
	assert.ErrorIs(t, err, ErrParameterNotFound)

	require.NoError(t, b.SetConfig(ctx, "paper-size", "A4"))

	value, err := b.ReadConfig(ctx, "paper-size")
	require.NoError(t, err)
	assert.Equal(t, "A4", value)
}

func TestMemoryBackend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewMemoryBackend()
	assert.Error(t, b.Print(ctx, "a.pdf", "office"))
	_, err := b.Status(ctx, "office")
	assert.Error(t, err)
}
