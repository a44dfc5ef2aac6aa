package batch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kbukum/imageflow/graph"
	"github.com/kbukum/imageflow/logger"
	"github.com/kbukum/imageflow/nodes"
	"github.com/kbukum/imageflow/observability"
)

// NewImageRunner returns a Runner wired for image workflows: each input
// file binds to the graph's input nodes, and each output node's image is
// written to the destination path.
func NewImageRunner(workers int, log *logger.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		Workers:     workers,
		Log:         log,
		Metrics:     metrics,
		SetInput:    SetImageInput,
		WriteOutput: WriteImageOutputs,
	}
}

// SetImageInput points every input node of the graph at path.
func SetImageInput(g *graph.Graph, path string) error {
	bound := 0
	for _, id := range g.NodeIDs() {
		info, err := g.Node(id)
		if err != nil || info.Type != nodes.TypeInput {
			continue
		}
		if err := g.SetParameter(id, nodes.InputPath, path); err != nil {
			return err
		}
		bound++
	}
	if bound == 0 {
		return fmt.Errorf("workflow has no input node")
	}
	return nil
}

// InputBinder returns a SetInput hook bound to specific node ids, for
// documents that hint which nodes receive the source path. With no ids it
// falls back to SetImageInput's type scan.
func InputBinder(ids ...string) func(*graph.Graph, string) error {
	if len(ids) == 0 {
		return SetImageInput
	}
	return func(g *graph.Graph, path string) error {
		for _, id := range ids {
			if err := g.SetParameter(id, nodes.InputPath, path); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteImageOutputs writes each evaluated output node's image to output.
// When the workflow has several output nodes, the first takes the path as
// given and the rest get a numeric suffix before the extension.
func WriteImageOutputs(g *graph.Graph, res *graph.Result, input, output string) error {
	ids := make([]string, 0, len(res.Values))
	for id := range res.Values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	written := 0
	for _, id := range ids {
		info, err := g.Node(id)
		if err != nil || info.Type != nodes.TypeOutput {
			continue
		}
		im, ok := res.Values[id].(*nodes.Image)
		if !ok {
			return fmt.Errorf("output node %s produced %T, want an image", id, res.Values[id])
		}
		dest := output
		if written > 0 {
			ext := filepath.Ext(output)
			dest = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(output, ext), written+1, ext)
		}
		if err := im.Encode(dest); err != nil {
			return err
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("workflow has no output node among its evaluated targets")
	}
	return nil
}
