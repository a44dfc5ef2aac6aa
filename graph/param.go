package graph

import (
	"fmt"
	"math"
	"strconv"
)

// ParamKind classifies a parameter's value space.
type ParamKind string

const (
	// ParamInt is a bounded integer, optionally stepped.
	ParamInt ParamKind = "int"
	// ParamFloat is a bounded float.
	ParamFloat ParamKind = "float"
	// ParamPath is a filesystem path string.
	ParamPath ParamKind = "path"
	// ParamEnum is one of a closed set of string options.
	ParamEnum ParamKind = "enum"
)

// ParamSpec declares one parameter of a node type: its kind, default, and
// domain. Numeric kinds always carry an inclusive [Min, Max] range. Step,
// when positive, restricts an int parameter to Min + k*Step (odd kernel
// sizes use Min 1, Step 2).
type ParamSpec struct {
	Name    string
	Kind    ParamKind
	Default any
	Min     float64
	Max     float64
	Step    float64
	Options []string
}

// validate checks the spec itself, not a value. Called at type registration.
func (s *ParamSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("param spec has empty name")
	}
	switch s.Kind {
	case ParamInt, ParamFloat:
		if s.Min > s.Max {
			return fmt.Errorf("param %q: min %g exceeds max %g", s.Name, s.Min, s.Max)
		}
		if s.Step < 0 {
			return fmt.Errorf("param %q: negative step", s.Name)
		}
		if s.Step > 0 && s.Kind == ParamFloat {
			return fmt.Errorf("param %q: step is only supported for int params", s.Name)
		}
	case ParamPath:
		if s.Step != 0 || len(s.Options) > 0 {
			return fmt.Errorf("param %q: path params take no domain", s.Name)
		}
	case ParamEnum:
		if len(s.Options) == 0 {
			return fmt.Errorf("param %q: enum requires at least one option", s.Name)
		}
	default:
		return fmt.Errorf("param %q: unknown kind %q", s.Name, s.Kind)
	}
	if _, err := s.normalize(s.Default); err != nil {
		return fmt.Errorf("param %q: default %v: %w", s.Name, s.Default, err)
	}
	return nil
}

// normalize coerces a caller-supplied value into the canonical Go type for
// the kind (int, float64, or string) and checks it against the domain.
// JSON decodes every number as float64 and YAML as int or float64; both
// arrive here.
func (s *ParamSpec) normalize(v any) (any, error) {
	switch s.Kind {
	case ParamInt:
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("expected an integer, got %T", v)
		}
		if float64(n) < s.Min || float64(n) > s.Max {
			return nil, fmt.Errorf("value %d out of range [%g, %g]", n, s.Min, s.Max)
		}
		if s.Step > 0 {
			step := int(s.Step)
			if (n-int(s.Min))%step != 0 {
				return nil, fmt.Errorf("value %d does not land on step %d from %g", n, step, s.Min)
			}
		}
		return n, nil
	case ParamFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("expected a number, got %T", v)
		}
		if f < s.Min || f > s.Max {
			return nil, fmt.Errorf("value %s out of range [%g, %g]",
				strconv.FormatFloat(f, 'g', -1, 64), s.Min, s.Max)
		}
		return f, nil
	case ParamPath:
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a path string, got %T", v)
		}
		return str, nil
	case ParamEnum:
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected one of %v, got %T", s.Options, v)
		}
		for _, opt := range s.Options {
			if str == opt {
				return str, nil
			}
		}
		return nil, fmt.Errorf("value %q is not one of %v", str, s.Options)
	default:
		return nil, fmt.Errorf("unknown param kind %q", s.Kind)
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		if float64(n) == math.Trunc(float64(n)) {
			return int(n), true
		}
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Params is a node's parameter map. Values are always normalized: int for
// ParamInt, float64 for ParamFloat, string for ParamPath and ParamEnum.
type Params map[string]any

// Int returns the named int parameter, or zero when absent.
func (p Params) Int(name string) int {
	if n, ok := p[name].(int); ok {
		return n
	}
	return 0
}

// Float returns the named float parameter, or zero when absent.
func (p Params) Float(name string) float64 {
	switch n := p[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// String returns the named string parameter, or "" when absent.
func (p Params) String(name string) string {
	if s, ok := p[name].(string); ok {
		return s
	}
	return ""
}

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
