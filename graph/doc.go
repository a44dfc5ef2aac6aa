// Package graph provides the node-graph execution engine behind imageflow
// pipelines.
//
// A Graph owns typed nodes connected output-port to input-port, forming a
// DAG. Every node carries a parameter map and a cache slot; the Evaluator
// walks the dependency closure of the requested nodes in topological order
// and recomputes a node only when its fingerprint (type + parameters +
// upstream fingerprints) differs from the cached one.
//
// Two rules keep the engine predictable:
//   - Mutations are atomic: a rejected operation leaves the graph untouched.
//   - The fingerprint recheck is the source of truth. Mutations mark nodes
//     stale but never drop their results, so a change that is reverted
//     before the next evaluation lands back on its old cache entries; a
//     stale entry can only cause a recompute, never a wrong reuse. Only an
//     explicit Invalidate forgets results, for state outside the graph.
//
// A Graph is single-writer: one goroutine mutates or evaluates it at a
// time, enforced by the graph's own lock. Parallelism comes from evaluating
// independent Clones, never from sharing one graph.
package graph
