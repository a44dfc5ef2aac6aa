// Package batch applies one workflow to many input files in parallel.
//
// Each input gets its own clone of the graph, so workers never contend on
// caches or parameters; the template graph is left untouched. Item
// failures are collected, not fatal: the summary reports how many inputs
// processed, failed, and were skipped after cancellation. Cancellation is
// coarse via the run context, checked between nodes and between items.
package batch
