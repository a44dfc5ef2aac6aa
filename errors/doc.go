// Package errors provides unified error handling for the imageflow engine.
// It implements structured error types with machine-readable codes and node
// attribution, so callers can react to a failure class without parsing
// messages.
//
// Construction-time codes (UNKNOWN_NODE_TYPE, INVALID_PARAMETER,
// PORT_MISMATCH, PORT_OCCUPIED, CYCLE) are atomic rejections: the graph is
// left untouched. Evaluation-time codes (MISSING_INPUT, NODE_COMPUTE) abort
// the walk but preserve every result cached before the failure.
package errors
