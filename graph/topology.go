package graph

import (
	"sort"

	"github.com/kbukum/imageflow/errors"
)

// successors returns the sorted, de-duplicated ids of nodes fed by id's
// output. Caller holds the lock.
func (g *Graph) successors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for dst, src := range g.incoming {
		if src.Node == id && !seen[dst.Node] {
			seen[dst.Node] = true
			out = append(out, dst.Node)
		}
	}
	sort.Strings(out)
	return out
}

// predecessors returns the sorted, de-duplicated ids of nodes feeding id's
// inputs. Caller holds the lock.
func (g *Graph) predecessors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for dst, src := range g.incoming {
		if dst.Node == id && !seen[src.Node] {
			seen[src.Node] = true
			out = append(out, src.Node)
		}
	}
	sort.Strings(out)
	return out
}

// upstreamPath searches upstream from `from` for `to`. When found it
// returns the node chain from `to` to `from` in edge direction, so the
// caller can report the loop a new from->to edge would close. Returns nil
// when `to` is not upstream of `from`. Caller holds the lock.
func (g *Graph) upstreamPath(from, to string) []string {
	// via maps a discovered node to the downstream node it was reached
	// from, which is exactly the next hop in edge direction.
	via := map[string]string{}
	stack := []string{from}
	seen := map[string]bool{from: true}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, pred := range g.predecessors(cur) {
			if seen[pred] {
				continue
			}
			seen[pred] = true
			via[pred] = cur
			if pred == to {
				path := []string{to}
				for next := cur; ; next = via[next] {
					path = append(path, next)
					if next == from {
						return path
					}
				}
			}
			stack = append(stack, pred)
		}
	}
	return nil
}

// dependencyClosure returns the target nodes plus everything upstream of
// them. Caller holds the lock; target ids are assumed valid.
func (g *Graph) dependencyClosure(targets []string) map[string]bool {
	closure := make(map[string]bool, len(targets))
	queue := append([]string(nil), targets...)
	for _, id := range targets {
		closure[id] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, pred := range g.predecessors(cur) {
			if !closure[pred] {
				closure[pred] = true
				queue = append(queue, pred)
			}
		}
	}
	return closure
}

// topoOrder returns the dependency closure of the targets in topological
// order, using Kahn's algorithm with lexicographic tie-breaking so the
// order is stable across runs. Construction keeps graphs acyclic, so a
// cycle here means internal corruption; it is still reported, not looped
// on. Caller holds the lock.
func (g *Graph) topoOrder(targets []string) ([]string, error) {
	closure := g.dependencyClosure(targets)

	inDegree := make(map[string]int, len(closure))
	for id := range closure {
		inDegree[id] = 0
	}
	for dst, src := range g.incoming {
		if closure[dst.Node] && closure[src.Node] {
			inDegree[dst.Node]++
		}
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(closure))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)

		for dst, src := range g.incoming {
			if src.Node != cur || !closure[dst.Node] {
				continue
			}
			inDegree[dst.Node]--
			if inDegree[dst.Node] == 0 {
				i := sort.SearchStrings(ready, dst.Node)
				ready = append(ready, "")
				copy(ready[i+1:], ready[i:])
				ready[i] = dst.Node
			}
		}
	}

	if len(order) != len(closure) {
		return nil, errors.Cycle(nil).WithDetails(map[string]any{
			"processed": len(order), "total": len(closure),
		})
	}
	return order, nil
}

// TopologicalOrder returns the dependency closure of the given nodes in
// evaluation order. With no arguments it orders the whole graph.
func (g *Graph) TopologicalOrder(targets ...string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(targets) == 0 {
		targets = make([]string, 0, len(g.nodes))
		for id := range g.nodes {
			targets = append(targets, id)
		}
	} else {
		for _, id := range targets {
			if _, ok := g.nodes[id]; !ok {
				return nil, errors.NodeNotFound(id)
			}
		}
	}
	return g.topoOrder(targets)
}
