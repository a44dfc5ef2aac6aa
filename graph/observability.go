package graph

import (
	"context"
	"time"

	"github.com/kbukum/imageflow/logger"
	"github.com/kbukum/imageflow/observability"
)

// WithTracing wraps a node type with OpenTelemetry span creation.
// Each compute creates a span named "{prefix}.{typeName}".
func WithTracing(t *Type, prefix string) *Type {
	inner := t.Compute
	wrapped := *t
	wrapped.Compute = func(ctx context.Context, inputs []any, params Params) (any, error) {
		ctx, span := observability.StartSpan(ctx, prefix+"."+t.Name)
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrNodeType, t.Name)

		out, err := inner(ctx, inputs, params)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return out, err
	}
	return &wrapped
}

// WithMetrics wraps a node type with metric recording.
// Records compute count, duration, and errors per type.
func WithMetrics(t *Type, metrics *observability.Metrics) *Type {
	inner := t.Compute
	wrapped := *t
	wrapped.Compute = func(ctx context.Context, inputs []any, params Params) (any, error) {
		start := time.Now()
		out, err := inner(ctx, inputs, params)
		duration := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
			metrics.RecordError(ctx, "compute", t.Name)
		}
		metrics.RecordNodeCompute(ctx, t.Name, status, duration)

		return out, err
	}
	return &wrapped
}

// WithLogging wraps a node type with compute logging.
// Logs: type name, duration, and success/error status.
func WithLogging(t *Type, log *logger.Logger) *Type {
	inner := t.Compute
	wrapped := *t
	wrapped.Compute = func(ctx context.Context, inputs []any, params Params) (any, error) {
		start := time.Now()
		out, err := inner(ctx, inputs, params)
		duration := time.Since(start)

		fields := map[string]interface{}{
			"node_type": t.Name,
			"duration":  duration.String(),
		}

		if err != nil {
			fields["error"] = err.Error()
			log.Error("node compute failed", fields)
		} else {
			log.Debug("node compute completed", fields)
		}

		return out, err
	}
	return &wrapped
}
