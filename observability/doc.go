// Package observability provides OpenTelemetry tracing and metrics for batch
// pipelines.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultConfig("batchkit"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultConfig("batchkit"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("batchkit"), "train")
//	p, err := batch.New(src, 32, batch.WithMetrics[Sample, Tensor](metrics))
//
// Without Init* calls the global providers are no-ops, so instrumented code
// pays almost nothing.
package observability
