package graph

import "fmt"

// PortRef addresses one port on one node. Direction is not part of the
// reference: Connect takes a source (output) and a destination (input) and
// verifies both against the node type's declaration.
type PortRef struct {
	Node string
	Port string
}

// String returns the "node:port" form used in logs and error details.
func (p PortRef) String() string {
	return fmt.Sprintf("%s:%s", p.Node, p.Port)
}

// Edge is a connection from an output port to an input port. An input port
// holds at most one incoming edge; an output port fans out freely.
type Edge struct {
	Source PortRef
	Dest   PortRef
}
