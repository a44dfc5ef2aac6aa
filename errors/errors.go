package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error is the unified engine error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Node is the id of the node the error is attributed to, when known.
	Node string `json:"node,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	switch {
	case e.Node != "" && e.Cause != nil:
		return fmt.Sprintf("%s: node %s: %s (cause: %v)", e.Code, e.Node, e.Message, e.Cause)
	case e.Node != "":
		return fmt.Sprintf("%s: node %s: %s", e.Code, e.Node, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithNode attributes the error to a node and returns the receiver.
func (e *Error) WithNode(id string) *Error {
	e.Node = id
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// --- Constructors, one per code ---

// UnknownNodeType creates an Error for a type tag with no registry entry.
func UnknownNodeType(tag string) *Error {
	return &Error{
		Code: ErrCodeUnknownNodeType, Message: fmt.Sprintf("node type %q is not registered", tag),
		Details: map[string]any{"type": tag},
	}
}

// InvalidParameter creates an Error for a rejected parameter value.
func InvalidParameter(nodeID, param, reason string) *Error {
	return &Error{
		Code: ErrCodeInvalidParameter, Message: fmt.Sprintf("parameter %q: %s", param, reason),
		Node:    nodeID,
		Details: map[string]any{"parameter": param},
	}
}

// PortMismatch creates an Error for a connection naming an undeclared port
// or a port with the wrong direction.
func PortMismatch(nodeID, port, reason string) *Error {
	return &Error{
		Code: ErrCodePortMismatch, Message: fmt.Sprintf("port %q: %s", port, reason),
		Node:    nodeID,
		Details: map[string]any{"port": port},
	}
}

// PortOccupied creates an Error for a connection to an input port that
// already has an incoming edge.
func PortOccupied(nodeID, port string) *Error {
	return &Error{
		Code: ErrCodePortOccupied, Message: fmt.Sprintf("input port %q already has an incoming connection", port),
		Node:    nodeID,
		Details: map[string]any{"port": port},
	}
}

// Cycle creates an Error for a connection that would make the graph cyclic.
// The path, when known, lists the node ids on the offending loop.
func Cycle(path []string) *Error {
	msg := "connection would create a cycle"
	if len(path) > 0 {
		msg = fmt.Sprintf("connection would create a cycle: %s", strings.Join(path, " -> "))
	}
	err := &Error{Code: ErrCodeCycle, Message: msg}
	if len(path) > 0 {
		err.Details = map[string]any{"path": path}
	}
	return err
}

// NodeNotFound creates an Error for an operation naming an unknown node id.
func NodeNotFound(id string) *Error {
	return &Error{
		Code: ErrCodeNodeNotFound, Message: "no node with this id in the graph",
		Node: id,
	}
}

// EdgeNotFound creates an Error for a disconnect of an edge that does not exist.
func EdgeNotFound(srcNode, srcPort, dstNode, dstPort string) *Error {
	return &Error{
		Code:    ErrCodeEdgeNotFound,
		Message: fmt.Sprintf("no connection from %s:%s to %s:%s", srcNode, srcPort, dstNode, dstPort),
		Details: map[string]any{
			"from_node": srcNode, "from_port": srcPort,
			"to_node": dstNode, "to_port": dstPort,
		},
	}
}

// MissingInput creates an Error for a node evaluated with an unconnected
// input port.
func MissingInput(nodeID, port string) *Error {
	return &Error{
		Code: ErrCodeMissingInput, Message: fmt.Sprintf("input port %q has no incoming connection", port),
		Node:    nodeID,
		Details: map[string]any{"port": port},
	}
}

// Compute creates an Error wrapping a failure from a node's compute function.
func Compute(nodeID string, cause error) *Error {
	return &Error{
		Code: ErrCodeNodeCompute, Message: "node computation failed",
		Node: nodeID, Cause: cause,
	}
}

// InvalidWorkflow creates an Error for a workflow document that fails
// validation before any graph is built.
func InvalidWorkflow(reason string) *Error {
	return &Error{
		Code: ErrCodeInvalidWorkflow, Message: reason,
	}
}

// --- Inspection helpers ---

// IsEngineError checks if an error is (or wraps) an engine Error.
func IsEngineError(err error) bool {
	var e *Error
	return stderrors.As(err, &e)
}

// AsEngineError converts an error to an engine Error if possible.
func AsEngineError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of an engine Error anywhere in err's chain, or ""
// for errors the engine did not produce.
func CodeOf(err error) ErrorCode {
	if e, ok := AsEngineError(err); ok {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given engine error code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
