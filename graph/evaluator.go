package graph

import (
	"context"
	"time"

	"github.com/kbukum/imageflow/errors"
	"github.com/kbukum/imageflow/logger"
)

// Evaluator walks a graph and produces node results, reusing cached ones
// whenever fingerprints prove nothing relevant changed.
type Evaluator struct {
	// Log, when set, receives a debug summary per evaluation. Per-node
	// logging belongs to the WithLogging type middleware instead.
	Log *logger.Logger
}

// Stats counts cache behavior for one evaluation.
type Stats struct {
	// Computed is the number of nodes whose compute function ran.
	Computed int
	// CacheHits is the number of nodes reused from cache.
	CacheHits int
}

// Result holds the outcome of one evaluation.
type Result struct {
	// Values maps each requested node id to its (possibly cached) result.
	Values map[string]any
	// Stats counts computes versus cache hits across the dependency closure.
	Stats Stats
	// Duration is the wall time of the walk.
	Duration time.Duration
}

// EvaluateAll evaluates every terminal node of the graph.
func (e *Evaluator) EvaluateAll(ctx context.Context, g *Graph) (*Result, error) {
	return e.Evaluate(ctx, g)
}

// Evaluate brings the targets (default: all terminals) up to date and
// returns their results. The walk covers the targets' dependency closure
// in topological order; each node is reused when its fingerprint matches
// the cached one and recomputed otherwise.
//
// On error the walk stops, but every result cached before the failure
// (this run or earlier) stays cached, so a fixed graph resumes where it
// left off. Cancellation is coarse: the context is checked between nodes,
// never mid-compute.
func (e *Evaluator) Evaluate(ctx context.Context, g *Graph, targets ...string) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()

	if len(targets) == 0 {
		targets = g.terminals()
	} else {
		for _, id := range targets {
			if _, ok := g.nodes[id]; !ok {
				return nil, errors.NodeNotFound(id)
			}
		}
	}

	order, err := g.topoOrder(targets)
	if err != nil {
		return nil, err
	}

	res := &Result{Values: make(map[string]any, len(targets))}
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := g.nodes[id]

		for _, port := range n.typ.Inputs {
			if _, connected := g.incoming[PortRef{Node: id, Port: port}]; !connected {
				return nil, errors.MissingInput(id, port)
			}
		}

		fp := g.fingerprintOf(n)
		if n.hasResult && n.fingerprint == fp {
			res.Stats.CacheHits++
			continue
		}

		inputs := make([]any, len(n.typ.Inputs))
		for i, port := range n.typ.Inputs {
			src := g.incoming[PortRef{Node: id, Port: port}]
			inputs[i] = g.nodes[src.Node].result
		}

		out, err := n.typ.Compute(ctx, inputs, n.params.clone())
		if err != nil {
			return nil, errors.Compute(id, err)
		}

		n.result = out
		n.fingerprint = fp
		n.hasResult = true
		res.Stats.Computed++
		g.emit(Event{Kind: NodeEvaluated, Node: id})
	}

	for _, id := range targets {
		res.Values[id] = g.nodes[id].result
	}
	res.Duration = time.Since(start)

	if e.Log != nil {
		e.Log.Debug("evaluation complete", map[string]interface{}{
			"targets":    len(targets),
			"computed":   res.Stats.Computed,
			"cache_hits": res.Stats.CacheHits,
			"duration":   res.Duration.String(),
		})
	}
	return res, nil
}
