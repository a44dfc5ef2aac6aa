package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Graph construction errors. Every one of these is an atomic rejection:
// the graph is left exactly as it was before the failed operation.
const (
	// ErrCodeUnknownNodeType indicates a node type tag with no registry entry.
	ErrCodeUnknownNodeType ErrorCode = "UNKNOWN_NODE_TYPE"
	// ErrCodeInvalidParameter indicates a parameter value outside its declared
	// domain, of the wrong kind, or with an unknown name.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
	// ErrCodePortMismatch indicates a connection naming an undeclared port or
	// ports with the wrong directions.
	ErrCodePortMismatch ErrorCode = "PORT_MISMATCH"
	// ErrCodePortOccupied indicates a connection to an input port that already
	// has an incoming edge.
	ErrCodePortOccupied ErrorCode = "PORT_OCCUPIED"
	// ErrCodeCycle indicates a connection that would make the graph cyclic.
	ErrCodeCycle ErrorCode = "CYCLE"
)

// Lookup errors
const (
	// ErrCodeNodeNotFound indicates an operation naming an unknown node id.
	ErrCodeNodeNotFound ErrorCode = "NODE_NOT_FOUND"
	// ErrCodeEdgeNotFound indicates a disconnect of an edge that does not exist.
	ErrCodeEdgeNotFound ErrorCode = "EDGE_NOT_FOUND"
)

// Evaluation errors. Results cached before the failure remain cached.
const (
	// ErrCodeMissingInput indicates evaluation reached a node with an
	// unconnected input port.
	ErrCodeMissingInput ErrorCode = "MISSING_INPUT"
	// ErrCodeNodeCompute indicates a node's compute function returned an error.
	ErrCodeNodeCompute ErrorCode = "NODE_COMPUTE"
)

// Document errors
const (
	// ErrCodeInvalidWorkflow indicates a workflow document that fails
	// structural validation before any graph is built.
	ErrCodeInvalidWorkflow ErrorCode = "INVALID_WORKFLOW"
)
