package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/imageflow/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds OpenTelemetry metric instruments for engine observability.
type Metrics struct {
	evaluationTotal     metric.Int64Counter
	evaluationDuration  metric.Float64Histogram
	nodeComputeTotal    metric.Int64Counter
	nodeComputeDuration metric.Float64Histogram
	cacheHitTotal       metric.Int64Counter
	cacheMissTotal      metric.Int64Counter
	errorTotal          metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	evaluationTotal, err := meter.Int64Counter("evaluation.total",
		metric.WithDescription("Total number of graph evaluations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation.total counter: %w", err)
	}

	evaluationDuration, err := meter.Float64Histogram("evaluation.duration",
		metric.WithDescription("Duration of graph evaluations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation.duration histogram: %w", err)
	}

	nodeComputeTotal, err := meter.Int64Counter("node.compute.total",
		metric.WithDescription("Total number of node computes by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating node.compute.total counter: %w", err)
	}

	nodeComputeDuration, err := meter.Float64Histogram("node.compute.duration",
		metric.WithDescription("Duration of node computes in seconds by type"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating node.compute.duration histogram: %w", err)
	}

	cacheHitTotal, err := meter.Int64Counter("cache.hit.total",
		metric.WithDescription("Total nodes reused from cache during evaluation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache.hit.total counter: %w", err)
	}

	cacheMissTotal, err := meter.Int64Counter("cache.miss.total",
		metric.WithDescription("Total nodes recomputed during evaluation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache.miss.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		evaluationTotal:     evaluationTotal,
		evaluationDuration:  evaluationDuration,
		nodeComputeTotal:    nodeComputeTotal,
		nodeComputeDuration: nodeComputeDuration,
		cacheHitTotal:       cacheHitTotal,
		cacheMissTotal:      cacheMissTotal,
		errorTotal:          errorTotal,
	}, nil
}

// RecordEvaluation records one graph evaluation.
func (m *Metrics) RecordEvaluation(ctx context.Context, status string, duration time.Duration) {
	m.evaluationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.evaluationDuration.Record(ctx, duration.Seconds())
}

// RecordNodeCompute records one node compute execution.
func (m *Metrics) RecordNodeCompute(ctx context.Context, nodeType, status string, duration time.Duration) {
	m.nodeComputeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", nodeType),
		attribute.String("status", status),
	))
	m.nodeComputeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("type", nodeType),
	))
}

// RecordCacheStats records hit/miss counts from one evaluation.
func (m *Metrics) RecordCacheStats(ctx context.Context, hits, misses int) {
	if hits > 0 {
		m.cacheHitTotal.Add(ctx, int64(hits))
	}
	if misses > 0 {
		m.cacheMissTotal.Add(ctx, int64(misses))
	}
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
