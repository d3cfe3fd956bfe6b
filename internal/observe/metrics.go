// Package observe provides application-wide observability primitives for
// Trunkline: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Trunkline metrics.
const meterName = "github.com/trunkline-ai/trunkline"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// TranscodeDuration tracks per-frame transcoding latency (decode,
	// upsample, silence classification).
	TranscodeDuration metric.Float64Histogram

	// STTDeliveryDuration tracks time spent handing a frame to the speech
	// engine, including any backpressure wait.
	STTDeliveryDuration metric.Float64Histogram

	// --- Counters ---

	// FramesProcessed counts successfully transcoded media frames. Use with:
	//   attribute.String("track", ...)
	FramesProcessed metric.Int64Counter

	// FramesDropped counts frames discarded before reaching the speech
	// engine. Use with:
	//   attribute.String("reason", ...): "malformed", "silent", "stt_closed"
	FramesDropped metric.Int64Counter

	// SilentFrames counts frames classified as silent, whether or not they
	// were forwarded.
	SilentFrames metric.Int64Counter

	// BytesForwarded counts PCM bytes delivered to the speech engine.
	BytesForwarded metric.Int64Counter

	// Transcripts counts transcripts received from the speech engine. Use with:
	//   attribute.Bool("final", ...)
	Transcripts metric.Int64Counter

	// --- Gauges ---

	// ActiveCalls tracks the number of live carrier media streams.
	ActiveCalls metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// frameBuckets defines histogram bucket boundaries (in seconds) sized for
// per-frame work, which must stay well under the 20 ms frame interval.
var frameBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.05, 0.1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranscodeDuration, err = m.Float64Histogram("trunkline.transcode.duration",
		metric.WithDescription("Latency of per-frame audio transcoding."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(frameBuckets...),
	); err != nil {
		return nil, err
	}
	if met.STTDeliveryDuration, err = m.Float64Histogram("trunkline.stt.delivery.duration",
		metric.WithDescription("Latency of frame delivery to the speech engine."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(frameBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.FramesProcessed, err = m.Int64Counter("trunkline.frames.processed",
		metric.WithDescription("Total media frames transcoded, by track."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("trunkline.frames.dropped",
		metric.WithDescription("Total media frames dropped before delivery, by reason."),
	); err != nil {
		return nil, err
	}
	if met.SilentFrames, err = m.Int64Counter("trunkline.frames.silent",
		metric.WithDescription("Total media frames classified as silent."),
	); err != nil {
		return nil, err
	}
	if met.BytesForwarded, err = m.Int64Counter("trunkline.bytes.forwarded",
		metric.WithDescription("Total PCM bytes delivered to the speech engine."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.Transcripts, err = m.Int64Counter("trunkline.transcripts",
		metric.WithDescription("Total transcripts received from the speech engine."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveCalls, err = m.Int64UpDownCounter("trunkline.active_calls",
		metric.WithDescription("Number of live carrier media streams."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("trunkline.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordFrame records a successfully transcoded frame for the given track.
func (m *Metrics) RecordFrame(ctx context.Context, track string) {
	m.FramesProcessed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("track", track)),
	)
}

// RecordDrop records a dropped frame with the standard reason attribute.
func (m *Metrics) RecordDrop(ctx context.Context, reason string) {
	m.FramesDropped.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordSilent records a frame classified as silent.
func (m *Metrics) RecordSilent(ctx context.Context) {
	m.SilentFrames.Add(ctx, 1)
}

// RecordForwarded records PCM bytes delivered to the speech engine.
func (m *Metrics) RecordForwarded(ctx context.Context, n int) {
	m.BytesForwarded.Add(ctx, int64(n))
}

// RecordTranscript records a transcript received from the speech engine.
func (m *Metrics) RecordTranscript(ctx context.Context, final bool) {
	m.Transcripts.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("final", final)),
	)
}
