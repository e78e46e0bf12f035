package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_etl"

// Decomposition failure reasons used as the "reason" label.
const (
	ReasonMalformed     = "malformed"
	ReasonUnsupported   = "unsupported"
	ReasonNoConvergence = "no_convergence"
	ReasonOther         = "other"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	EventsConsumed     prometheus.Counter
	MechanismsProduced prometheus.Counter
	TransformErrors    prometheus.Counter
	PipelineRunning    prometheus.Gauge

	// Decomposition metrics.
	DecompositionFailures *prometheus.CounterVec // labels: reason={malformed,unsupported,no_convergence,other}
	JacobiRotations       prometheus.Histogram
	PercentDoubleCouple   prometheus.Histogram

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many instances as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Total event messages read from the source topic.",
		}),
		MechanismsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mechanisms_produced_total",
			Help:      "Total mechanism messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total events that produced no mechanism.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		DecompositionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decomposition_failures_total",
			Help:      "Products that could not be decomposed, by reason.",
		}, []string{"reason"}),
		JacobiRotations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "jacobi_rotations",
			Help:      "Jacobi rotations needed to diagonalize a moment tensor.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 50, 100},
		}),
		PercentDoubleCouple: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "percent_double_couple",
			Help:      "Double-couple percentage of decomposed tensors.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EventsConsumed,
		m.MechanismsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.DecompositionFailures,
		m.JacobiRotations,
		m.PercentDoubleCouple,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
