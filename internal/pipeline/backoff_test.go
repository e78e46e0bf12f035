package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/quake-mechanism-etl/internal/observability"
)

func TestPipeline_Wait_DoublesUpToMax(t *testing.T) {
	p := New(nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting(), 1)
	p.backoff = time.Millisecond

	var seen []time.Duration
	for range 4 {
		assert.True(t, p.wait(context.Background()))
		seen = append(seen, p.backoff)
	}
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 8 * time.Millisecond, 16 * time.Millisecond}, seen)
}

func TestPipeline_Wait_Cancelled(t *testing.T) {
	p := New(nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, p.wait(ctx))
	assert.Equal(t, initialBackoff, p.backoff, "backoff unchanged when cancelled")
}

func TestPipeline_NotReadyBeforeFirstLoad(t *testing.T) {
	p := New(nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting(), 1)
	assert.ErrorIs(t, p.CheckReadiness(context.Background()), errNotReady)
}
