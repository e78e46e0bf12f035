package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "raw-quake-events", cfg.KafkaSourceTopic)
	assert.Equal(t, "decomposed-mechanisms", cfg.KafkaSinkTopic)
	assert.Equal(t, "quake-mechanism-etl", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 100, cfg.JacobiMaxRotations)
	assert.Empty(t, cfg.OTelEndpoint)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("JACOBI_MAX_ROTATIONS", "250")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, 250, cfg.JacobiMaxRotations)
	assert.Equal(t, "http://collector:4318", cfg.OTelEndpoint)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		wants string
	}{
		{"shutdown timeout not a duration", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, "SHUTDOWN_TIMEOUT"},
		{"zero batch size", map[string]string{"BATCH_SIZE": "0"}, "BATCH_SIZE"},
		{"batch size too large", map[string]string{"BATCH_SIZE": "9999"}, "BATCH_SIZE"},
		{"flush interval not a duration", map[string]string{"BATCH_FLUSH_INTERVAL": "soon"}, "BATCH_FLUSH_INTERVAL"},
		{"zero rotations", map[string]string{"JACOBI_MAX_ROTATIONS": "0"}, "JACOBI_MAX_ROTATIONS"},
		{"negative rotations", map[string]string{"JACOBI_MAX_ROTATIONS": "-5"}, "JACOBI_MAX_ROTATIONS"},
		{"rotations not a number", map[string]string{"JACOBI_MAX_ROTATIONS": "many"}, "JACOBI_MAX_ROTATIONS"},
		{"rotations too large", map[string]string{"JACOBI_MAX_ROTATIONS": "20000"}, "JACOBI_MAX_ROTATIONS"},
		{"mapbox timeout", map[string]string{"MAPBOX_TIMEOUT": "bad"}, "MAPBOX_TIMEOUT"},
		{"zero mapbox timeout", map[string]string{"MAPBOX_TIMEOUT": "0s"}, "MAPBOX_TIMEOUT"},
		{"mapbox cache size", map[string]string{"MAPBOX_CACHE_SIZE": "0"}, "MAPBOX_CACHE_SIZE"},
		{"mapbox enabled without token", map[string]string{"MAPBOX_ENABLED": "true"}, "MAPBOX_TOKEN"},
		{"same source and sink", map[string]string{"KAFKA_SOURCE_TOPIC": "quakes", "KAFKA_SINK_TOPIC": "quakes"}, "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wants)
		})
	}
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
