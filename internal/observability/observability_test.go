package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-mechanism-etl/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level      string
		enabled    slog.Level
		suppressed slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"WARN", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"verbose", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: "json"})

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			assert.False(t, logger.Enabled(ctx, tt.suppressed))
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DecompositionFailures.WithLabelValues(ReasonNoConvergence).Inc()
	a.EventsConsumed.Add(3)

	assert.InDelta(t, 1, testutil.ToFloat64(a.DecompositionFailures.WithLabelValues(ReasonNoConvergence)), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(a.EventsConsumed), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.EventsConsumed), 0)
}

func TestMetrics_Collectors_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsForTesting()

	require.NotPanics(t, func() { reg.MustRegister(m.collectors()...) })

	m.JacobiRotations.Observe(5)
	n, err := testutil.GatherAndCount(reg, "quake_etl_jacobi_rotations")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInitTracing_Discard(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "quake-mechanism-etl", "test", "")
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "decompose")
	span.End()

	require.NoError(t, shutdown(context.Background()))
}
