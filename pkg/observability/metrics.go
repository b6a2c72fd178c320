package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes the Prometheus metrics exporter on its own registry.
// Returns the MeterProvider and an HTTP handler for the /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return provider, handler, nil
}

// ---------------------------------------------------------------------------
// Allocation instruments
// ---------------------------------------------------------------------------

// AllocationMetrics records the outcome of blanket allocation runs.
// A nil *AllocationMetrics records nothing.
type AllocationMetrics struct {
	allocations metric.Int64Counter
	iterations  metric.Int64Histogram
	duration    metric.Float64Histogram
}

// NewAllocationMetrics registers the allocation instruments on meter.
func NewAllocationMetrics(meter metric.Meter) (*AllocationMetrics, error) {
	allocations, err := meter.Int64Counter("blanket.allocations",
		metric.WithDescription("Blanket allocation runs by outcome."),
	)
	if err != nil {
		return nil, fmt.Errorf("create allocations counter: %w", err)
	}

	iterations, err := meter.Int64Histogram("blanket.allocation.iterations",
		metric.WithDescription("Rebalancing passes used per allocation run."),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 10, 25, 50, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("create iterations histogram: %w", err)
	}

	duration, err := meter.Float64Histogram("blanket.allocation.duration_ms",
		metric.WithDescription("Engine time per allocation run."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &AllocationMetrics{
		allocations: allocations,
		iterations:  iterations,
		duration:    duration,
	}, nil
}

// Record adds one allocation run.
func (m *AllocationMetrics) Record(ctx context.Context, outcome string, iterations int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.allocations.Add(ctx, 1, attrs)
	m.iterations.Record(ctx, int64(iterations), attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}
