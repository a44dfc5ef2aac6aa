package graph

import (
	"sort"
	"sync"

	"github.com/kbukum/imageflow/errors"
)

// Graph owns a set of nodes and the edges between their ports. All methods
// are safe for concurrent use, but the graph is single-writer: one
// operation runs at a time under the graph's lock, evaluations included.
type Graph struct {
	mu       sync.Mutex
	reg      *Registry
	nodes    map[string]*node
	incoming map[PortRef]PortRef // dest input port -> source output port

	subs    map[int]func(Event)
	nextSub int
}

// NewGraph creates an empty graph drawing node types from reg.
func NewGraph(reg *Registry) *Graph {
	return &Graph{
		reg:      reg,
		nodes:    make(map[string]*node),
		incoming: make(map[PortRef]PortRef),
		subs:     make(map[int]func(Event)),
	}
}

// Registry returns the registry this graph draws node types from.
func (g *Graph) Registry() *Registry { return g.reg }

// NodeIDs returns the sorted ids of all nodes.
func (g *Graph) NodeIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether a node id exists in the graph.
func (g *Graph) Has(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.nodes[id]
	return ok
}

// Node returns a read-only snapshot of one node.
func (g *Graph) Node(id string) (NodeInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return NodeInfo{}, errors.NodeNotFound(id)
	}
	return NodeInfo{
		ID:     n.id,
		Type:   n.typ.Name,
		Label:  n.typ.Label,
		Params: n.params.clone(),
		Cached: n.hasResult,
	}, nil
}

// Edges returns every edge, sorted by destination then source. The order
// is deterministic so serialized workflows are stable.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.edges()
}

func (g *Graph) edges() []Edge {
	out := make([]Edge, 0, len(g.incoming))
	for dst, src := range g.incoming {
		out = append(out, Edge{Source: src, Dest: dst})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dest.Node != out[j].Dest.Node {
			return out[i].Dest.Node < out[j].Dest.Node
		}
		if out[i].Dest.Port != out[j].Dest.Port {
			return out[i].Dest.Port < out[j].Dest.Port
		}
		return out[i].Source.Node < out[j].Source.Node
	})
	return out
}

// Terminals returns the sorted ids of nodes with no outgoing edges. With
// no explicit targets, evaluation starts here.
func (g *Graph) Terminals() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.terminals()
}

func (g *Graph) terminals() []string {
	hasOut := make(map[string]bool, len(g.nodes))
	for _, src := range g.incoming {
		hasOut[src.Node] = true
	}
	var ids []string
	for id := range g.nodes {
		if !hasOut[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Parameter returns one parameter's current (normalized) value.
func (g *Graph) Parameter(id, name string) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, errors.NodeNotFound(id)
	}
	if _, declared := n.typ.paramSpec(name); !declared {
		return nil, errors.InvalidParameter(id, name, "unknown parameter")
	}
	return n.params[name], nil
}

// Parameters returns a copy of a node's full parameter map.
func (g *Graph) Parameters(id string) (Params, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, errors.NodeNotFound(id)
	}
	return n.params.clone(), nil
}

// Clone returns a deep copy of the graph's topology and parameters with
// cold caches and no subscribers. The clone shares only the (immutable)
// registry with the original, so independent goroutines can evaluate
// original and clone concurrently.
func (g *Graph) Clone() *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := NewGraph(g.reg)
	for id, n := range g.nodes {
		out.nodes[id] = n.clone()
	}
	for dst, src := range g.incoming {
		out.incoming[dst] = src
	}
	return out
}

// walkDownstream visits id and every node reachable from it, breadth-first.
// Caller holds the lock.
func (g *Graph) walkDownstream(id string, visit func(*node)) {
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if n, ok := g.nodes[cur]; ok {
			visit(n)
		}
		for _, next := range g.successors(cur) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
}

// markStaleDownstream tells subscribers that id and everything reachable
// from it may no longer be current. Cached results stay in place: the
// evaluator's fingerprint recheck decides what actually recomputes, which
// is what lets a reverted change land back on its old cache entries.
// Caller holds the lock.
func (g *Graph) markStaleDownstream(id string) {
	g.walkDownstream(id, func(n *node) {
		if n.hasResult {
			g.emit(Event{Kind: NodeInvalidated, Node: n.id})
		}
	})
}

// dropDownstream clears the cache slots of id and everything reachable from
// it. Only the explicit Invalidate uses it: fingerprints cannot see state
// outside the graph, so forcing a recompute means actually forgetting.
// Caller holds the lock.
func (g *Graph) dropDownstream(id string) {
	g.walkDownstream(id, func(n *node) {
		if n.invalidate() {
			g.emit(Event{Kind: NodeInvalidated, Node: n.id})
		}
	})
}
