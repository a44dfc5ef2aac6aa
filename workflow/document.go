package workflow

import (
	"fmt"
	"time"

	"github.com/kbukum/imageflow/validation"
)

// DocumentVersion is the current document format version. Loaders accept
// anything up to and including it.
const DocumentVersion = 1

// Document is the serialized form of a workflow.
type Document struct {
	Version     int             `json:"version" yaml:"version"`
	Name        string          `json:"name" yaml:"name" validate:"required"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata    Metadata        `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Nodes       []NodeDef       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionDef `json:"connections,omitempty" yaml:"connections,omitempty"`
	Execution   *Execution      `json:"execution,omitempty" yaml:"execution,omitempty"`
}

// Metadata carries document bookkeeping. The engine only maintains the
// timestamps; the rest is for humans and tools.
type Metadata struct {
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// NodeDef is one node entry. ID and Parameters round-trip exactly;
// Position and Size are editor layout, carried but never interpreted.
type NodeDef struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Position   *Position      `json:"position,omitempty" yaml:"position,omitempty"`
	Size       *Size          `json:"size,omitempty" yaml:"size,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Position is an editor canvas position.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is an editor node box size.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// ConnectionDef is one edge entry.
type ConnectionDef struct {
	FromNode string `json:"from_node" yaml:"from_node"`
	FromPort string `json:"from_port" yaml:"from_port"`
	ToNode   string `json:"to_node" yaml:"to_node"`
	ToPort   string `json:"to_port" yaml:"to_port"`
}

// Execution holds optional run hints: the node to evaluate and the nodes
// that receive the source path on batch runs. Unknown ids are dropped with
// a warning at run time rather than failing the document, since older
// documents lack the section entirely.
type Execution struct {
	OutputNodeID string   `json:"output_node_id,omitempty" yaml:"output_node_id,omitempty"`
	InputNodeIDs []string `json:"input_node_ids,omitempty" yaml:"input_node_ids,omitempty"`
}

// Validate checks document structure: required fields, version bounds,
// unique node ids, and connection endpoints that reference declared nodes.
// It does not consult a registry; Build reports unknown types and invalid
// parameters with their precise codes.
func (d *Document) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}

	v := validation.New()
	v.Custom(d.Version >= 0, "version", "must not be negative")
	v.Custom(d.Version <= DocumentVersion, "version",
		fmt.Sprintf("format version %d is newer than supported version %d", d.Version, DocumentVersion))

	ids := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			v.AddError(field+".id", "is required")
			continue
		}
		if n.Type == "" {
			v.AddError(field+".type", "is required")
		}
		if ids[n.ID] {
			v.AddError(field+".id", fmt.Sprintf("duplicate node id %q", n.ID))
		}
		ids[n.ID] = true
	}

	for i, c := range d.Connections {
		field := fmt.Sprintf("connections[%d]", i)
		v.Required(field+".from_node", c.FromNode)
		v.Required(field+".from_port", c.FromPort)
		v.Required(field+".to_node", c.ToNode)
		v.Required(field+".to_port", c.ToPort)
		if c.FromNode != "" && !ids[c.FromNode] {
			v.AddError(field+".from_node", fmt.Sprintf("unknown node id %q", c.FromNode))
		}
		if c.ToNode != "" && !ids[c.ToNode] {
			v.AddError(field+".to_node", fmt.Sprintf("unknown node id %q", c.ToNode))
		}
	}

	return v.Validate()
}
