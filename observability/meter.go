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

	"github.com/kbukum/batchkit/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, cfg *Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by a batch pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	transformDuration metric.Float64Histogram
	delivered         metric.Int64Counter
	failures          metric.Int64Counter
	queueDepth        metric.Int64UpDownCounter
	attrs             metric.MeasurementOption
}

// NewMetrics creates pipeline instruments on meter, labelled with the pipeline name.
func NewMetrics(meter metric.Meter, pipeline string) (*Metrics, error) {
	transformDuration, err := meter.Float64Histogram("batch.transform.duration",
		metric.WithDescription("Duration of per-batch transforms in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.transform.duration histogram: %w", err)
	}

	delivered, err := meter.Int64Counter("batch.delivered",
		metric.WithDescription("Batches handed to the consumer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.delivered counter: %w", err)
	}

	failures, err := meter.Int64Counter("batch.failures",
		metric.WithDescription("Transforms that failed after all retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.failures counter: %w", err)
	}

	queueDepth, err := meter.Int64UpDownCounter("batch.queue.depth",
		metric.WithDescription("Completed batches waiting for the consumer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.queue.depth counter: %w", err)
	}

	return &Metrics{
		transformDuration: transformDuration,
		delivered:         delivered,
		failures:          failures,
		queueDepth:        queueDepth,
		attrs:             metric.WithAttributes(attribute.String("pipeline", pipeline)),
	}, nil
}

// RecordTransform records one transform execution.
func (m *Metrics) RecordTransform(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.transformDuration.Record(ctx, d.Seconds(), m.attrs)
}

// RecordDelivered counts one batch handed to the consumer.
func (m *Metrics) RecordDelivered(ctx context.Context) {
	if m == nil {
		return
	}
	m.delivered.Add(ctx, 1, m.attrs)
}

// RecordFailure counts one failed transform.
func (m *Metrics) RecordFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, m.attrs)
}

// QueueDelta adjusts the queue depth gauge by delta.
func (m *Metrics) QueueDelta(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.queueDepth.Add(ctx, delta, m.attrs)
}
