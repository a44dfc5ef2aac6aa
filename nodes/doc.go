// Package nodes provides the builtin node type catalog for imageflow
// graphs: file input/output, color adjustments, filters, and geometry.
//
// Every builtin exchanges *nodes.Image (8-bit NRGBA) on its ports, so any
// output connects to any input. Compute functions allocate fresh output
// buffers and never modify their inputs; cached results stay immutable.
//
// Register wires the catalog into a graph.Registry:
//
//	reg := graph.NewRegistry()
//	if err := nodes.Register(reg); err != nil {
//		...
//	}
package nodes
