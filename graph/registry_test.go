package graph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/imageflow/errors"
)

// --- registry tests ---

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	typ := valueType(nil)
	if err := reg.Register(typ); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := reg.Get("value")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != typ {
		t.Fatal("expected the registered type back")
	}
	if !reg.Has("value") {
		t.Fatal("expected Has to see the type")
	}

	_, err = reg.Get("missing")
	if !errors.HasCode(err, errors.ErrCodeUnknownNodeType) {
		t.Fatalf("expected UNKNOWN_NODE_TYPE, got %v", err)
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(valueType(nil)); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := reg.Register(valueType(nil))
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected a duplicate rejection, got %v", err)
	}
}

func TestRegistry_RejectsMalformedTypes(t *testing.T) {
	noop := func(_ context.Context, _ []any, _ Params) (any, error) { return nil, nil }
	cases := []struct {
		name string
		typ  *Type
	}{
		{"nil type", nil},
		{"empty name", &Type{Output: "out", Compute: noop}},
		{"no output port", &Type{Name: "x", Compute: noop}},
		{"nil compute", &Type{Name: "x", Output: "out"}},
		{"empty input name", &Type{Name: "x", Output: "out", Inputs: []string{""}, Compute: noop}},
		{"duplicate input", &Type{Name: "x", Output: "out", Inputs: []string{"in", "in"}, Compute: noop}},
		{"duplicate param", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamInt, Default: 0}, {Name: "p", Kind: ParamInt, Default: 0}}}},
		{"min above max", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamInt, Min: 5, Max: 1, Default: 5}}}},
		{"negative step", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamInt, Min: 0, Max: 10, Step: -1, Default: 0}}}},
		{"step on a float", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamFloat, Min: 0, Max: 1, Step: 0.5, Default: 0.0}}}},
		{"enum without options", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamEnum, Default: "a"}}}},
		{"path with options", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamPath, Options: []string{"q"}, Default: ""}}}},
		{"unknown kind", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: "blob", Default: 0}}}},
		{"default off its domain", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamInt, Min: 0, Max: 10, Default: 42}}}},
		{"default off its step", &Type{Name: "x", Output: "out", Compute: noop,
			Params: []ParamSpec{{Name: "p", Kind: ParamInt, Min: 1, Max: 9, Step: 2, Default: 4}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := NewRegistry().Register(tc.typ); err == nil {
				t.Fatal("expected a rejection")
			}
		})
	}
}

func TestRegistry_NamesAndTypesSorted(t *testing.T) {
	reg := testRegistry(nil)
	names := reg.Names()
	if fmt.Sprint(names) != "[add mul value]" {
		t.Fatalf("expected sorted names, got %v", names)
	}
	for i, typ := range reg.Types() {
		if typ.Name != names[i] {
			t.Fatalf("expected types sorted by tag, got %q at %d", typ.Name, i)
		}
	}
}

func TestRegistry_WrapLayersMiddleware(t *testing.T) {
	reg := testRegistry(nil)
	var ran []string
	reg.Wrap(func(typ *Type) *Type {
		inner := typ.Compute
		wrapped := *typ
		wrapped.Compute = func(ctx context.Context, inputs []any, params Params) (any, error) {
			ran = append(ran, typ.Name)
			return inner(ctx, inputs, params)
		}
		return &wrapped
	})

	g := NewGraph(reg)
	mustAddID(t, g, "v", "value", Params{"v": 2})
	mustAddID(t, g, "a", "add", Params{"delta": 1})
	mustConnect(t, g, "v", "a", "in")

	res := mustEvaluate(t, g)
	if res.Values["a"] != 3 {
		t.Fatalf("expected wrapping to preserve semantics, got %v", res.Values["a"])
	}
	if fmt.Sprint(ran) != "[value add]" {
		t.Fatalf("expected both computes wrapped, got %v", ran)
	}
}

func TestRegistry_WrapNilKeepsOriginal(t *testing.T) {
	reg := testRegistry(nil)
	orig, err := reg.Get("value")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	reg.Wrap(func(*Type) *Type { return nil })
	got, err := reg.Get("value")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != orig {
		t.Fatal("expected nil wraps to keep the original type")
	}
}
