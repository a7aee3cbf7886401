// Package telemetry provides OpenTelemetry instrumentation for the poller.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// PollerMeterName is the name used for the poller metrics meter
	PollerMeterName = "github.com/juanzandev/CS487Project/poller"

	metricCycles         = "gradewidget_poll_cycles_total"
	metricCycleDuration  = "gradewidget_poll_cycle_duration_seconds"
	metricCourseFailures = "gradewidget_course_fetch_failures_total"
	metricBackoffDelay   = "gradewidget_backoff_delay_seconds"
)

// PollerMetrics holds the OpenTelemetry instruments for poll cycles
type PollerMetrics struct {
	cycles         metric.Int64Counter
	cycleDuration  metric.Float64Histogram
	courseFailures metric.Int64Counter
	backoffDelay   metric.Float64Gauge
}

// NewPollerMetrics creates a new PollerMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewPollerMetrics(provider metric.MeterProvider) (*PollerMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(PollerMeterName)

	cycles, err := meter.Int64Counter(
		metricCycles,
		metric.WithDescription("Number of poll cycles by outcome"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		metricCycleDuration,
		metric.WithDescription("Duration of poll cycles in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	courseFailures, err := meter.Int64Counter(
		metricCourseFailures,
		metric.WithDescription("Number of per-course enrollment fetches that failed"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}

	backoffDelay, err := meter.Float64Gauge(
		metricBackoffDelay,
		metric.WithDescription("Delay before the next automatic poll after a failure"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PollerMetrics{
		cycles:         cycles,
		cycleDuration:  cycleDuration,
		courseFailures: courseFailures,
		backoffDelay:   backoffDelay,
	}, nil
}

// RecordCycle records one finished cycle. outcome is a fetch status, or
// "error" when the course list could not be fetched.
func (m *PollerMetrics) RecordCycle(ctx context.Context, outcome string, manual bool, duration time.Duration, courseFailures int) {
	if m == nil || m.cycles == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("manual", manual),
	)
	m.cycles.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, duration.Seconds(), attrs)
	if courseFailures > 0 {
		m.courseFailures.Add(ctx, int64(courseFailures))
	}
}

// RecordBackoff records the delay chosen after a failed cycle. Zero means the
// poller is back on its base interval.
func (m *PollerMetrics) RecordBackoff(ctx context.Context, delay time.Duration) {
	if m == nil || m.backoffDelay == nil {
		return
	}
	m.backoffDelay.Record(ctx, delay.Seconds())
}
