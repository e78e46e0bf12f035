package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/quake-mechanism-etl/internal/domain"
	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/matrix"
	"github.com/couchcryptid/quake-mechanism-etl/internal/observability"
)

// ErrNoMechanisms is returned for events none of whose products decomposed.
var ErrNoMechanisms = errors.New("event produced no mechanisms")

// MechanismTransformer implements Transformer: it parses an event feature,
// decomposes each moment-tensor and focal-mechanism product, and enriches
// and serializes the resulting mechanisms.
type MechanismTransformer struct {
	geocoder     domain.Geocoder
	logger       *slog.Logger
	metrics      *observability.Metrics
	tracer       trace.Tracer
	maxRotations int
}

// NewTransformer creates a MechanismTransformer. Pass a nil geocoder to
// disable geocoding enrichment; maxRotations bounds the eigensolver per tensor.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics, maxRotations int) *MechanismTransformer {
	return &MechanismTransformer{
		geocoder:     geocoder,
		logger:       logger,
		metrics:      metrics,
		tracer:       observability.Tracer(),
		maxRotations: maxRotations,
	}
}

// Transform returns one output event per decodable product. A product that
// fails to decompose is logged and counted; the event only fails when no
// product survives.
func (t *MechanismTransformer) Transform(ctx context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error) {
	event, err := domain.ParseRawEvent(raw)
	if err != nil {
		return nil, err
	}
	if len(event.Products) == 0 {
		return nil, fmt.Errorf("event %s: %w", event.ID, ErrNoMechanisms)
	}

	out := make([]domain.OutputEvent, 0, len(event.Products))
	for _, product := range event.Products {
		m, err := t.mechanism(ctx, event, product)
		if err != nil {
			t.metrics.DecompositionFailures.WithLabelValues(failureReason(err)).Inc()
			t.logger.Warn("product decomposition failed, skipping product",
				"event_id", event.ID,
				"product_type", product.Type,
				"product_source", product.Source,
				"product_code", product.Code,
				"error", err,
			)
			continue
		}

		m = domain.EnrichWithGeocoding(ctx, m, t.geocoder, t.logger)

		ev, err := domain.SerializeMechanism(m)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("event %s: %w", event.ID, ErrNoMechanisms)
	}
	return out, nil
}

// mechanism decomposes a single product inside its own span.
func (t *MechanismTransformer) mechanism(ctx context.Context, event domain.QuakeEvent, product domain.Product) (domain.Mechanism, error) {
	_, span := t.tracer.Start(ctx, "decompose",
		trace.WithAttributes(
			attribute.String("event.id", event.ID),
			attribute.String("product.type", product.Type),
			attribute.String("product.source", product.Source),
		),
	)
	defer span.End()

	tensor, err := domain.TensorFromProduct(product)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tensor")
		return domain.Mechanism{}, err
	}

	d, err := domain.Decompose(tensor, matrix.WithMaxRotations(t.maxRotations))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decompose")
		return domain.Mechanism{}, err
	}

	span.SetAttributes(
		attribute.Int("jacobi.rotations", d.Rotations),
		attribute.Float64("mechanism.percent_dc", d.PercentDC),
	)
	t.metrics.JacobiRotations.Observe(float64(d.Rotations))
	t.metrics.PercentDoubleCouple.Observe(d.PercentDC)

	return domain.EnrichMechanism(domain.NewMechanism(event, product, tensor, d)), nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, matrix.ErrNoConvergence):
		return observability.ReasonNoConvergence
	case errors.Is(err, domain.ErrMalformedTensor):
		return observability.ReasonMalformed
	case errors.Is(err, domain.ErrUnsupportedProduct):
		return observability.ReasonUnsupported
	default:
		return observability.ReasonOther
	}
}
