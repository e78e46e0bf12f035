package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Eigensolver budget per tensor.
	JacobiMaxRotations int

	// OTLP/HTTP trace endpoint; empty disables export.
	OTelEndpoint string

	// Mapbox reverse geocoding of epicenters.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-quake-events"),
		KafkaSinkTopic:   sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "decomposed-mechanisms"),
		KafkaGroupID:     sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "quake-mechanism-etl"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		OTelEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		MapboxToken:      os.Getenv("MAPBOX_TOKEN"),
	}

	var err error
	if cfg.ShutdownTimeout, err = sharedcfg.ParseShutdownTimeout(); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = sharedcfg.ParseBatchSize(); err != nil {
		return nil, err
	}
	if cfg.BatchFlushInterval, err = sharedcfg.ParseBatchFlushInterval(); err != nil {
		return nil, err
	}
	// Zero is rejected: every non-diagonal tensor needs at least one rotation.
	if cfg.JacobiMaxRotations, err = intInRange("JACOBI_MAX_ROTATIONS", 100, 1, 10000); err != nil {
		return nil, err
	}
	if cfg.MapboxTimeout, err = positiveDuration("MAPBOX_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.MapboxCacheSize, err = intInRange("MAPBOX_CACHE_SIZE", 1000, 1, 1_000_000); err != nil {
		return nil, err
	}

	// A token enables geocoding unless MAPBOX_ENABLED says otherwise.
	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		cfg.MapboxEnabled = v == "true"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case len(c.KafkaBrokers) == 0:
		return errors.New("KAFKA_BROKERS is required")
	case c.KafkaSourceTopic == "":
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	case c.KafkaSinkTopic == "":
		return errors.New("KAFKA_SINK_TOPIC is required")
	case c.KafkaSourceTopic == c.KafkaSinkTopic:
		return errors.New("KAFKA_SOURCE_TOPIC and KAFKA_SINK_TOPIC must differ")
	case c.MapboxEnabled && c.MapboxToken == "":
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

// intInRange reads an integer variable, returning def when it is unset.
func intInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, lo, hi)
	}
	return n, nil
}

// positiveDuration reads a duration variable, returning def when it is unset.
func positiveDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}
