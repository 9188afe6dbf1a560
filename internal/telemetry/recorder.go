package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder exposes session-level counters and timings. A nil Recorder is
// valid and records nothing, so callers never need to branch.
type Recorder struct {
	partials  metric.Int64Counter
	finals    metric.Int64Counter
	failures  metric.Int64Counter
	evicted   metric.Int64Counter
	inference metric.Float64Histogram
}

// NewRecorder builds instruments on the globally installed meter provider.
func NewRecorder() (*Recorder, error) {
	meter := otel.Meter("github.com/captionlabs/caption-core/internal/session")

	partials, err1 := meter.Int64Counter("caption_partials_total",
		metric.WithDescription("Partial transcript events emitted"))
	finals, err2 := meter.Int64Counter("caption_finals_total",
		metric.WithDescription("Final transcript events emitted"))
	failures, err3 := meter.Int64Counter("caption_recognition_failures_total",
		metric.WithDescription("Recognition calls that returned an error"))
	evicted, err4 := meter.Int64Counter("caption_evicted_samples_total",
		metric.WithDescription("Samples dropped from the head of the rolling buffer"))
	inference, err5 := meter.Float64Histogram("caption_inference_duration_seconds",
		metric.WithDescription("Wall-clock duration of recognition calls"))

	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return nil, err
	}
	return &Recorder{
		partials:  partials,
		finals:    finals,
		failures:  failures,
		evicted:   evicted,
		inference: inference,
	}, nil
}

func (r *Recorder) Partial(ctx context.Context) {
	if r == nil {
		return
	}
	r.partials.Add(ctx, 1)
}

func (r *Recorder) Final(ctx context.Context) {
	if r == nil {
		return
	}
	r.finals.Add(ctx, 1)
}

func (r *Recorder) Failure(ctx context.Context, stage string) {
	if r == nil {
		return
	}
	r.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (r *Recorder) Evicted(ctx context.Context, samples int) {
	if r == nil {
		return
	}
	r.evicted.Add(ctx, int64(samples))
}

func (r *Recorder) Inference(ctx context.Context, d time.Duration, final bool) {
	if r == nil {
		return
	}
	r.inference.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("final", final)))
}
