package graph

// EventKind classifies a cache state change.
type EventKind string

const (
	// NodeInvalidated fires when a mutation leaves a node's cached result
	// possibly stale, or an explicit Invalidate drops it. The next
	// evaluation settles by fingerprint whether the node recomputes.
	NodeInvalidated EventKind = "invalidated"
	// NodeEvaluated fires when an evaluation stores a freshly computed
	// result for a node. Cache hits do not fire it.
	NodeEvaluated EventKind = "evaluated"
)

// Event describes one cache state change of one node.
type Event struct {
	Kind EventKind
	Node string
}

// Subscribe registers an observer for cache events and returns its cancel
// function. Observers run synchronously under the graph lock: keep them
// cheap, and never call back into the graph from one (that deadlocks).
func (g *Graph) Subscribe(fn func(Event)) (cancel func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

// emit delivers an event to every subscriber. Caller holds the lock.
func (g *Graph) emit(ev Event) {
	for _, fn := range g.subs {
		fn(ev)
	}
}
