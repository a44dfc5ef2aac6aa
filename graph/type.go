package graph

import (
	"context"
	"fmt"
)

// ComputeFunc produces a node's result from its upstream results and its
// parameters. Inputs arrive in declared input-port order and are shared
// cached values: implementations must not modify them. Params is a private
// copy and safe to read freely.
type ComputeFunc func(ctx context.Context, inputs []any, params Params) (any, error)

// Type declares a node type: the ports and parameters every instance gets,
// and the compute function they share. Types are registered once at startup
// and treated as immutable afterwards.
type Type struct {
	// Name is the stable lowercase type tag ("gaussian-blur"). It is the
	// identity used in workflow documents and fingerprints; renaming it
	// orphans saved workflows.
	Name string
	// Label is the human-readable display name.
	Label string
	// Params declares the parameters in display order.
	Params []ParamSpec
	// Inputs names the input ports in positional order.
	Inputs []string
	// Output names the single output port. Fan-out happens at the edge
	// level, so one output port per type is enough.
	Output string
	// Compute produces the node's result.
	Compute ComputeFunc
}

// validate checks the declaration. Called by Registry.Register.
func (t *Type) validate() error {
	if t.Name == "" {
		return fmt.Errorf("node type has empty name")
	}
	if t.Output == "" {
		return fmt.Errorf("node type %q declares no output port", t.Name)
	}
	if t.Compute == nil {
		return fmt.Errorf("node type %q has nil compute", t.Name)
	}
	seen := make(map[string]bool, len(t.Inputs))
	for _, in := range t.Inputs {
		if in == "" {
			return fmt.Errorf("node type %q has an empty input port name", t.Name)
		}
		if seen[in] {
			return fmt.Errorf("node type %q declares input port %q twice", t.Name, in)
		}
		seen[in] = true
	}
	params := make(map[string]bool, len(t.Params))
	for i := range t.Params {
		spec := &t.Params[i]
		if params[spec.Name] {
			return fmt.Errorf("node type %q declares param %q twice", t.Name, spec.Name)
		}
		params[spec.Name] = true
		if err := spec.validate(); err != nil {
			return fmt.Errorf("node type %q: %w", t.Name, err)
		}
	}
	return nil
}

// paramSpec returns the declaration for a parameter name.
func (t *Type) paramSpec(name string) (*ParamSpec, bool) {
	for i := range t.Params {
		if t.Params[i].Name == name {
			return &t.Params[i], true
		}
	}
	return nil, false
}

// hasInput reports whether the type declares the named input port.
func (t *Type) hasInput(port string) bool {
	for _, in := range t.Inputs {
		if in == port {
			return true
		}
	}
	return false
}

// defaults builds a fresh parameter map with every param at its default.
// Defaults were validated at registration, so normalize cannot fail here.
func (t *Type) defaults() Params {
	params := make(Params, len(t.Params))
	for i := range t.Params {
		spec := &t.Params[i]
		v, err := spec.normalize(spec.Default)
		if err != nil {
			panic(fmt.Sprintf("graph: type %q default for %q invalid after registration: %v", t.Name, spec.Name, err))
		}
		params[spec.Name] = v
	}
	return params
}
