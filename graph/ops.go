package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/imageflow/errors"
)

// AddNode creates a node of the given type with a generated id. Unspecified
// parameters take their declared defaults. On any error nothing is added.
func (g *Graph) AddNode(typeTag string, params Params) (string, error) {
	id := uuid.NewString()
	if err := g.AddNodeWithID(id, typeTag, params); err != nil {
		return "", err
	}
	return id, nil
}

// AddNodeWithID creates a node with a caller-supplied id. Workflow
// reconstruction uses it to preserve saved ids; everyone else should prefer
// AddNode.
func (g *Graph) AddNodeWithID(id, typeTag string, params Params) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id == "" {
		return errors.InvalidWorkflow("node id must not be empty")
	}
	if _, exists := g.nodes[id]; exists {
		return errors.InvalidWorkflow("node id already in use").WithNode(id)
	}
	typ, err := g.reg.Get(typeTag)
	if err != nil {
		return err
	}

	// Validate the full parameter map before touching the graph.
	merged := typ.defaults()
	for name, value := range params {
		spec, ok := typ.paramSpec(name)
		if !ok {
			return errors.InvalidParameter(id, name, "unknown parameter")
		}
		norm, err := spec.normalize(value)
		if err != nil {
			return errors.InvalidParameter(id, name, err.Error())
		}
		merged[name] = norm
	}

	g.nodes[id] = &node{id: id, typ: typ, params: merged}
	return nil
}

// RemoveNode deletes a node and every edge touching it. Former downstream
// nodes keep their caches but evaluate to MISSING_INPUT until their freed
// ports are reconnected; wiring in a replacement decides by fingerprint
// whether anything actually recomputes.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return errors.NodeNotFound(id)
	}

	var removed []PortRef
	var downstream []string
	for dst, src := range g.incoming {
		switch {
		case src.Node == id:
			removed = append(removed, dst)
			downstream = append(downstream, dst.Node)
		case dst.Node == id:
			removed = append(removed, dst)
		}
	}
	for _, dst := range removed {
		delete(g.incoming, dst)
	}
	delete(g.nodes, id)

	for _, d := range downstream {
		g.markStaleDownstream(d)
	}
	return nil
}

// Connect adds an edge from an output port to an input port. The
// destination port must be free; see ConnectReplace for swap semantics.
func (g *Graph) Connect(src, dst PortRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkEndpoints(src, dst); err != nil {
		return err
	}
	if _, occupied := g.incoming[dst]; occupied {
		return errors.PortOccupied(dst.Node, dst.Port)
	}
	if path := g.wouldCycle(src, dst); path != nil {
		return errors.Cycle(path)
	}

	g.incoming[dst] = src
	g.markStaleDownstream(dst.Node)
	return nil
}

// ConnectReplace is Connect that first removes any existing edge into the
// destination port. The swap is atomic: validation failures leave the
// original edge in place.
func (g *Graph) ConnectReplace(src, dst PortRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkEndpoints(src, dst); err != nil {
		return err
	}
	if cur, occupied := g.incoming[dst]; occupied && cur == src {
		return nil // already wired exactly so
	}
	if path := g.wouldCycle(src, dst); path != nil {
		return errors.Cycle(path)
	}

	g.incoming[dst] = src
	g.markStaleDownstream(dst.Node)
	return nil
}

// Disconnect removes the edge between the two ports. The destination keeps
// its cached result; reconnecting the same source later revives it.
func (g *Graph) Disconnect(src, dst PortRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	cur, ok := g.incoming[dst]
	if !ok || cur != src {
		return errors.EdgeNotFound(src.Node, src.Port, dst.Node, dst.Port)
	}
	delete(g.incoming, dst)
	g.markStaleDownstream(dst.Node)
	return nil
}

// SetParameter validates and stores one parameter value, then marks the
// node and its downstream stale. Caches are kept, not dropped: setting the
// value back before the next evaluation makes the whole change a cache hit.
// Setting the current value again is a no-op.
func (g *Graph) SetParameter(id, name string, value any) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return errors.NodeNotFound(id)
	}
	spec, declared := n.typ.paramSpec(name)
	if !declared {
		return errors.InvalidParameter(id, name, "unknown parameter")
	}
	norm, err := spec.normalize(value)
	if err != nil {
		return errors.InvalidParameter(id, name, err.Error())
	}
	if prev, ok := n.params[name]; ok && prev == norm {
		return nil
	}

	n.params[name] = norm
	g.markStaleDownstream(id)
	return nil
}

// Invalidate drops the cache of a node and its downstream, forcing the next
// evaluation to recompute them. Hosts use it when a node's result depends
// on something outside the graph, such as a file whose content changed
// under an unchanged path; fingerprints cannot detect that, so the drop
// is unconditional.
func (g *Graph) Invalidate(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return errors.NodeNotFound(id)
	}
	g.dropDownstream(id)
	return nil
}

// checkEndpoints validates node existence and port declarations for a
// prospective edge. Caller holds the lock.
func (g *Graph) checkEndpoints(src, dst PortRef) error {
	srcNode, ok := g.nodes[src.Node]
	if !ok {
		return errors.NodeNotFound(src.Node)
	}
	dstNode, ok := g.nodes[dst.Node]
	if !ok {
		return errors.NodeNotFound(dst.Node)
	}
	if src.Port != srcNode.typ.Output {
		if srcNode.typ.hasInput(src.Port) {
			return errors.PortMismatch(src.Node, src.Port, "source must be an output port")
		}
		return errors.PortMismatch(src.Node, src.Port,
			fmt.Sprintf("not the output port of a %s node (output is %q)", srcNode.typ.Name, srcNode.typ.Output))
	}
	if !dstNode.typ.hasInput(dst.Port) {
		if dst.Port == dstNode.typ.Output {
			return errors.PortMismatch(dst.Node, dst.Port, "destination must be an input port")
		}
		return errors.PortMismatch(dst.Node, dst.Port,
			fmt.Sprintf("not an input port of a %s node", dstNode.typ.Name))
	}
	return nil
}

// wouldCycle reports the node-id loop the new edge would close, or nil.
// The edge src -> dst cycles exactly when dst's node can already reach
// src's node, i.e. when dst's node is a transitive predecessor of src's.
// Caller holds the lock.
func (g *Graph) wouldCycle(src, dst PortRef) []string {
	if src.Node == dst.Node {
		return []string{dst.Node, src.Node}
	}
	chain := g.upstreamPath(src.Node, dst.Node)
	if chain == nil {
		return nil
	}
	return append(chain, dst.Node)
}
