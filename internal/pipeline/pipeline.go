package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/quake-mechanism-etl/internal/domain"
	"github.com/couchcryptid/quake-mechanism-etl/internal/observability"
)

// Retry delays after an extract or load failure. The delay doubles per
// consecutive failure and resets after a successful extract.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// errNotReady is reported until the first batch of mechanisms is loaded.
var errNotReady = errors.New("pipeline has not loaded any mechanisms yet")

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into zero or more output events, one per
// decomposed mechanism.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline runs the extract → decompose → load loop. Offsets are committed
// only after the mechanisms derived from them are loaded; messages that
// cannot be transformed are committed and skipped.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	tracer      trace.Tracer
	batchSize   int

	ready   atomic.Bool
	backoff time.Duration
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		tracer:      observability.Tracer(),
		batchSize:   batchSize,
		backoff:     initialBackoff,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errNotReady
	}
	return nil
}

// Run executes the batch loop until the context is cancelled. Source and
// sink failures are retried with backoff, so Run only returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for ctx.Err() == nil {
		if !p.runBatch(ctx) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// runBatch performs one extract-transform-load cycle. It returns false when
// the pipeline should stop.
func (p *Pipeline) runBatch(ctx context.Context) bool {
	start := time.Now()

	raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.wait(ctx)
	}
	if len(raws) == 0 {
		return ctx.Err() == nil
	}
	p.backoff = initialBackoff

	ctx, span := p.tracer.Start(ctx, "batch", trace.WithAttributes(
		attribute.Int("batch.messages", len(raws)),
	))
	defer span.End()

	p.metrics.EventsConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))

	out, done := p.transform(ctx, raws)
	span.SetAttributes(attribute.Int("batch.mechanisms", len(out)))
	if len(out) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		span.RecordError(err)
		// Offsets stay uncommitted; the messages are redelivered.
		return p.wait(ctx)
	}
	p.metrics.MechanismsProduced.Add(float64(len(out)))

	for _, raw := range done {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// transform decomposes every message of a batch. It returns the mechanisms
// to load and the messages they came from; failed messages are committed
// here so they are not redelivered.
func (p *Pipeline) transform(ctx context.Context, raws []domain.RawEvent) ([]domain.OutputEvent, []domain.RawEvent) {
	out := make([]domain.OutputEvent, 0, len(raws))
	done := make([]domain.RawEvent, 0, len(raws))

	for _, raw := range raws {
		events, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		out = append(out, events...)
		done = append(done, raw)
	}
	return out, done
}

// wait sleeps for the current backoff and doubles it. It returns false if
// the context ends first.
func (p *Pipeline) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, p.backoff) {
		return false
	}
	p.backoff = retry.NextBackoff(p.backoff, maxBackoff)
	return true
}

// commit acknowledges a message if the source supports it.
func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
