package graph

// node is one node instance inside a Graph. All access goes through the
// owning graph's lock.
type node struct {
	id     string
	typ    *Type
	params Params

	// Cache slot. hasResult and fingerprint move together: both set after
	// a successful compute, both cleared on invalidation.
	result      any
	fingerprint Fingerprint
	hasResult   bool
}

func (n *node) invalidate() (hadResult bool) {
	hadResult = n.hasResult
	n.result = nil
	n.fingerprint = ""
	n.hasResult = false
	return hadResult
}

func (n *node) clone() *node {
	return &node{
		id:     n.id,
		typ:    n.typ,
		params: n.params.clone(),
		// cache stays cold: clones share no computed state
	}
}

// NodeInfo is a read-only snapshot of one node, for serialization and UIs.
type NodeInfo struct {
	ID     string
	Type   string
	Label  string
	Params Params
	Cached bool
}
