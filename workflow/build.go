package workflow

import (
	"time"

	"github.com/kbukum/imageflow/graph"
)

// Build reconstructs a live graph from a document, preserving node ids so
// fingerprints match across save/load cycles. The first construction error
// aborts the build; because graph operations are atomic, a document either
// builds completely or not at all.
func Build(doc *Document, reg *graph.Registry) (*graph.Graph, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	g := graph.NewGraph(reg)
	for _, n := range doc.Nodes {
		if err := g.AddNodeWithID(n.ID, n.Type, graph.Params(n.Parameters)); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Connections {
		src := graph.PortRef{Node: c.FromNode, Port: c.FromPort}
		dst := graph.PortRef{Node: c.ToNode, Port: c.ToPort}
		if err := g.Connect(src, dst); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Snapshot serializes a graph into a document. When prev is given, its
// name, description, metadata, execution hints, and per-node layout carry
// forward; only the topology and parameters come from the graph. The
// update timestamp is refreshed.
func Snapshot(g *graph.Graph, prev *Document) *Document {
	doc := &Document{Version: DocumentVersion}
	var layout map[string]NodeDef
	if prev != nil {
		doc.Name = prev.Name
		doc.Description = prev.Description
		doc.Metadata = prev.Metadata
		if prev.Execution != nil {
			exec := *prev.Execution
			exec.InputNodeIDs = append([]string(nil), prev.Execution.InputNodeIDs...)
			doc.Execution = &exec
		}
		layout = make(map[string]NodeDef, len(prev.Nodes))
		for _, n := range prev.Nodes {
			layout[n.ID] = n
		}
	}

	now := time.Now().UTC()
	doc.Metadata.UpdatedAt = now
	if doc.Metadata.CreatedAt.IsZero() {
		doc.Metadata.CreatedAt = now
	}

	for _, id := range g.NodeIDs() {
		info, err := g.Node(id)
		if err != nil {
			continue
		}
		def := NodeDef{ID: id, Type: info.Type, Parameters: info.Params}
		if p, ok := layout[id]; ok {
			def.Position = p.Position
			def.Size = p.Size
		}
		doc.Nodes = append(doc.Nodes, def)
	}
	for _, e := range g.Edges() {
		doc.Connections = append(doc.Connections, ConnectionDef{
			FromNode: e.Source.Node,
			FromPort: e.Source.Port,
			ToNode:   e.Dest.Node,
			ToPort:   e.Dest.Port,
		})
	}
	return doc
}

// Targets resolves the document's output hint against the graph. Callers
// warn about a missing id and fall back to the graph's terminals when
// nothing valid remains.
func (d *Document) Targets(g *graph.Graph) (valid, missing []string) {
	if d.Execution == nil || d.Execution.OutputNodeID == "" {
		return nil, nil
	}
	if id := d.Execution.OutputNodeID; g.Has(id) {
		return []string{id}, nil
	}
	return nil, []string{d.Execution.OutputNodeID}
}

// InputNodes splits the document's input hints the same way. The batch
// runner binds each source path to the valid ids; with none it falls back
// to scanning for input-typed nodes.
func (d *Document) InputNodes(g *graph.Graph) (valid, missing []string) {
	if d.Execution == nil {
		return nil, nil
	}
	for _, id := range d.Execution.InputNodeIDs {
		if g.Has(id) {
			valid = append(valid, id)
		} else {
			missing = append(missing, id)
		}
	}
	return valid, missing
}
