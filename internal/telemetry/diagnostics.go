package telemetry

import (
	"context"
	"fmt"
	"sort"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Diagnostics is an in-process meter provider whose readings feed the
// diagnostics overlay. Nothing is exported.
type Diagnostics struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// NewDiagnostics creates the provider and its manual reader.
func NewDiagnostics() *Diagnostics {
	reader := sdkmetric.NewManualReader()
	return &Diagnostics{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// Provider returns the meter provider to hand to NewPollerMetrics.
func (d *Diagnostics) Provider() *sdkmetric.MeterProvider {
	return d.provider
}

// Summary is a flat reading of the poller metrics.
type Summary struct {
	Cycles         map[string]int64
	CourseFailures int64
	BackoffSeconds float64
	MeanCycle      float64
}

// Lines renders the summary for display, sorted by outcome.
func (s Summary) Lines() []string {
	outcomes := make([]string, 0, len(s.Cycles))
	for k := range s.Cycles {
		outcomes = append(outcomes, k)
	}
	sort.Strings(outcomes)

	lines := make([]string, 0, len(outcomes)+3)
	for _, k := range outcomes {
		lines = append(lines, fmt.Sprintf("cycles %-9s %d", k, s.Cycles[k]))
	}
	lines = append(lines,
		fmt.Sprintf("course failures  %d", s.CourseFailures),
		fmt.Sprintf("mean cycle       %.2fs", s.MeanCycle),
		fmt.Sprintf("backoff          %.0fs", s.BackoffSeconds),
	)
	return lines
}

// Collect reads the current metric values.
func (d *Diagnostics) Collect(ctx context.Context) (Summary, error) {
	var rm metricdata.ResourceMetrics
	if err := d.reader.Collect(ctx, &rm); err != nil {
		return Summary{}, err
	}

	out := Summary{Cycles: map[string]int64{}}
	var durSum float64
	var durCount uint64
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != PollerMeterName {
			continue
		}
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					switch m.Name {
					case metricCycles:
						outcome, _ := dp.Attributes.Value("outcome")
						out.Cycles[outcome.AsString()] += dp.Value
					case metricCourseFailures:
						out.CourseFailures += dp.Value
					}
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					durSum += dp.Sum
					durCount += dp.Count
				}
			case metricdata.Gauge[float64]:
				for _, dp := range data.DataPoints {
					out.BackoffSeconds = dp.Value
				}
			}
		}
	}
	if durCount > 0 {
		out.MeanCycle = durSum / float64(durCount)
	}
	return out, nil
}

// Shutdown releases the provider.
func (d *Diagnostics) Shutdown(ctx context.Context) error {
	return d.provider.Shutdown(ctx)
}
