package graph

import (
	"context"
	stderrors "errors"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/kbukum/imageflow/errors"
	"github.com/kbukum/imageflow/logger"
	"github.com/kbukum/imageflow/observability"
)

// --- middleware tests ---

func TestMiddleware_PreservesSemantics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	log := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"}, "test")

	computes := 0
	reg := testRegistry(&computes)
	reg.Wrap(func(typ *Type) *Type {
		return WithLogging(WithMetrics(WithTracing(typ, "node"), metrics), log)
	})

	g := NewGraph(reg)
	mustAddID(t, g, "src", "value", Params{"v": 3})
	mustAddID(t, g, "mid", "add", Params{"delta": 10})
	mustAddID(t, g, "tail", "add", Params{"delta": 100})
	mustConnect(t, g, "src", "mid", "in")
	mustConnect(t, g, "mid", "tail", "in")

	res := mustEvaluate(t, g)
	if res.Values["tail"] != 113 {
		t.Fatalf("expected 113 through the middleware stack, got %v", res.Values["tail"])
	}
	if computes != 3 {
		t.Fatalf("expected the inner computes to run once each, got %d", computes)
	}

	// Wrapping keeps the type name, so fingerprints and caching are
	// untouched.
	res = mustEvaluate(t, g)
	if res.Stats.CacheHits != 3 {
		t.Fatalf("expected wrapped types to cache normally, got %+v", res.Stats)
	}
}

func TestMiddleware_PropagatesErrors(t *testing.T) {
	boom := stderrors.New("boom")
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	log := logger.New(&logger.Config{Level: "fatal", Format: "json", Output: "stderr"}, "test")

	reg := NewRegistry()
	typ := funcType("bomb", nil, func(_ context.Context, _ []any, _ Params) (any, error) {
		return nil, boom
	})
	if err := reg.Register(WithLogging(WithMetrics(WithTracing(typ, "node"), metrics), log)); err != nil {
		t.Fatalf("register: %v", err)
	}

	g := NewGraph(reg)
	mustAddID(t, g, "b", "bomb", nil)
	_, err = (&Evaluator{}).Evaluate(context.Background(), g)
	if !errors.HasCode(err, errors.ErrCodeNodeCompute) {
		t.Fatalf("expected NODE_COMPUTE, got %v", err)
	}
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected the cause through the middleware, got %v", err)
	}
}
