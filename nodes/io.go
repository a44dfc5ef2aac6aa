package nodes

import (
	"context"
	"fmt"

	"github.com/kbukum/imageflow/graph"
)

// inputType loads an image file from disk. The cached result is keyed by
// the path parameter, not by file content; replacing the file behind an
// unchanged path needs an explicit Graph.Invalidate to be picked up.
func inputType() *graph.Type {
	return &graph.Type{
		Name:  TypeInput,
		Label: "Input",
		Params: []graph.ParamSpec{
			{Name: InputPath, Kind: graph.ParamPath, Default: ""},
		},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			path := params.String(InputPath)
			if path == "" {
				return nil, fmt.Errorf("input path is not set")
			}
			return Decode(path)
		},
	}
}

// outputType marks a graph terminal. It passes its input through unchanged
// so hosts can read the finished image from the output node's result.
func outputType() *graph.Type {
	return &graph.Type{
		Name:   TypeOutput,
		Label:  "Output",
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			return imageArg(inputs, 0)
		},
	}
}
