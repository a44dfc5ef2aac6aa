package nodes

import "github.com/kbukum/imageflow/graph"

// Builtin type tags. These are the stable identifiers stored in workflow
// documents; renaming one orphans every saved workflow that uses it.
const (
	TypeInput              = "input"
	TypeOutput             = "output"
	TypeGrayscale          = "grayscale"
	TypeInvert             = "invert"
	TypeBrightnessContrast = "brightness-contrast"
	TypeHueSaturation      = "hue-saturation"
	TypeGaussianBlur       = "gaussian-blur"
	TypeSharpen            = "sharpen"
	TypeThreshold          = "threshold"
	TypeEqualize           = "equalize"
	TypeResize             = "resize"
	TypeMix                = "mix"
	TypeMorphology         = "morphology"
)

// Port names used by the builtin catalog.
const (
	PortIn  = "in"
	PortOut = "out"
	PortA   = "a"
	PortB   = "b"
)

// InputPath is the parameter on input nodes that names the file to load.
// Hosts that feed a graph different files point this at each one in turn.
const InputPath = "path"

// Builtins returns fresh declarations of every builtin type, in catalog
// order.
func Builtins() []*graph.Type {
	return []*graph.Type{
		inputType(),
		outputType(),
		grayscaleType(),
		invertType(),
		brightnessContrastType(),
		hueSaturationType(),
		gaussianBlurType(),
		sharpenType(),
		thresholdType(),
		equalizeType(),
		resizeType(),
		mixType(),
		morphologyType(),
	}
}

// Register adds the full builtin catalog to reg.
func Register(reg *graph.Registry) error {
	for _, t := range Builtins() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns a fresh registry preloaded with the builtin catalog.
// The catalog is static, so a registration failure is a programming error
// and panics.
func Registry() *graph.Registry {
	reg := graph.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}
