// Package observability provides OpenTelemetry tracing and metrics
// integration for the imageflow engine.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("imageflow"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "graph.evaluate")
//	defer span.End()
//
// Metrics:
//
//	mcfg := observability.DefaultMeterConfig("imageflow")
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("imageflow"))
//	metrics.RecordNodeCompute(ctx, "gaussian-blur", "ok", duration)
//
// Everything here is optional: the engine runs fine with no provider
// configured, in which case the otel no-op globals absorb the calls.
package observability
