package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kbukum/imageflow/graph"
	"github.com/kbukum/imageflow/logger"
	"github.com/kbukum/imageflow/observability"
)

// processedSuffix is appended to output file stems.
const processedSuffix = "_processed"

// Runner fans a workflow out over input files.
type Runner struct {
	// Workers limits concurrent evaluations (0 = one per CPU core).
	Workers int
	// Log, when set, receives per-item progress logging.
	Log *logger.Logger
	// Metrics, when set, records evaluation and cache counters.
	Metrics *observability.Metrics
	// SetInput points a cloned graph at one source file before evaluation.
	SetInput func(g *graph.Graph, path string) error
	// WriteOutput persists one evaluation's results to the output path.
	WriteOutput func(g *graph.Graph, res *graph.Result, input, output string) error
	// Targets narrows evaluation to these node ids. Empty evaluates every
	// terminal. Clones keep node ids, so the ids stay valid per worker.
	Targets []string
	// OnItem, when set, is called as each item finishes, from the worker
	// goroutine that ran it.
	OnItem func(ItemResult)
}

// ItemResult is the outcome for one input file.
type ItemResult struct {
	Input    string
	Output   string
	Err      error
	Stats    graph.Stats
	Duration time.Duration
}

// Summary aggregates a whole batch run.
type Summary struct {
	// Processed counts inputs that evaluated and wrote successfully.
	Processed int
	// Failed counts inputs whose evaluation or output write failed.
	Failed int
	// Skipped counts inputs never started because the context was
	// cancelled first.
	Skipped int
	// Errors holds one error per failed input.
	Errors []error
	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
}

// Run applies the graph to every input. Each worker evaluates an
// independent clone; the template graph g is never modified. Item errors
// land in the summary, and the only error returned directly is the
// context's, so a cancelled run still reports what it finished.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, inputs []string, outputDir string) (*Summary, error) {
	if r.SetInput == nil || r.WriteOutput == nil {
		return nil, fmt.Errorf("batch: runner needs SetInput and WriteOutput")
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanBatchRun)
	defer span.End()
	start := time.Now()
	summary := &Summary{}
	if len(inputs) == 0 {
		summary.Elapsed = time.Since(start)
		return summary, nil
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("batch: create output directory: %w", err)
		}
	}

	// Reserve output paths up front so concurrent workers cannot race to
	// the same destination.
	used := make(map[string]bool, len(inputs))
	outputs := make([]string, len(inputs))
	for i, input := range inputs {
		outputs[i] = outputPath(input, outputDir, used)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers())

	for i, input := range inputs {
		if ctx.Err() != nil {
			summary.Skipped = len(inputs) - i
			break
		}
		wg.Add(1)
		go func(input, output string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item := r.processOne(ctx, g, input, output)

			mu.Lock()
			if item.Err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, item.Err)
			} else {
				summary.Processed++
			}
			mu.Unlock()

			if r.OnItem != nil {
				r.OnItem(item)
			}
		}(input, outputs[i])
	}
	wg.Wait()

	summary.Elapsed = time.Since(start)
	if r.Log != nil {
		r.Log.Info("batch run finished", logger.Fields(
			"processed", summary.Processed,
			"failed", summary.Failed,
			"skipped", summary.Skipped,
			logger.FieldDuration, summary.Elapsed.Milliseconds(),
		))
	}
	return summary, ctx.Err()
}

// processOne clones the template, binds one input, evaluates, and writes.
func (r *Runner) processOne(ctx context.Context, g *graph.Graph, input, output string) ItemResult {
	ctx, span := observability.StartSpan(ctx, observability.SpanBatchItem)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrInputPath, input)

	start := time.Now()
	item := ItemResult{Input: input, Output: output}

	clone := g.Clone()
	if err := r.SetInput(clone, input); err != nil {
		item.Err = fmt.Errorf("%s: %w", input, err)
		item.Duration = time.Since(start)
		r.finishItem(ctx, &item)
		return item
	}

	eval := &graph.Evaluator{Log: r.Log}
	res, err := eval.Evaluate(ctx, clone, r.Targets...)
	if err != nil {
		item.Err = fmt.Errorf("%s: %w", input, err)
		item.Duration = time.Since(start)
		r.finishItem(ctx, &item)
		return item
	}
	item.Stats = res.Stats

	if err := r.WriteOutput(clone, res, input, output); err != nil {
		item.Err = fmt.Errorf("%s: %w", input, err)
	}
	item.Duration = time.Since(start)
	r.finishItem(ctx, &item)
	return item
}

// finishItem logs and records metrics for a completed item.
func (r *Runner) finishItem(ctx context.Context, item *ItemResult) {
	status := "ok"
	if item.Err != nil {
		status = "error"
		observability.SetSpanError(ctx, item.Err)
	}
	observability.SetSpanAttribute(ctx, observability.AttrStatus, status)
	if r.Metrics != nil {
		r.Metrics.RecordEvaluation(ctx, status, item.Duration)
		r.Metrics.RecordCacheStats(ctx, item.Stats.CacheHits, item.Stats.Computed)
		if item.Err != nil {
			r.Metrics.RecordError(ctx, "batch_item", "batch")
		}
	}
	if r.Log == nil {
		return
	}
	if item.Err != nil {
		r.Log.Error("batch item failed", logger.Fields(
			logger.FieldPath, item.Input,
			logger.FieldError, item.Err.Error(),
		))
		return
	}
	r.Log.Debug("batch item finished", logger.Fields(
		logger.FieldPath, item.Input,
		"output", item.Output,
		"computed", item.Stats.Computed,
		"cache_hits", item.Stats.CacheHits,
		logger.FieldDuration, item.Duration.Milliseconds(),
	))
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}

// outputPath picks a collision-free destination for one input: the input
// stem plus "_processed", in outputDir or next to the source. Extensions
// the encoder cannot write fall back to PNG.
func outputPath(input, outputDir string, used map[string]bool) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	ext := filepath.Ext(input)
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg":
	default:
		ext = ".png"
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	path := filepath.Join(dir, stem+processedSuffix+ext)
	for i := 2; used[path] || pathExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s%s-%d%s", stem, processedSuffix, i, ext))
	}
	used[path] = true
	return path
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// OutputFile returns the destination a batch run would pick for a single
// input, so one-off runs name their outputs the same way.
func OutputFile(input, outputDir string) string {
	return outputPath(input, outputDir, map[string]bool{})
}

// DiscoverInputs lists the image files directly under dir, sniffing file
// content rather than trusting extensions. Unreadable entries are skipped.
func DiscoverInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: read input directory: %w", err)
	}
	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			continue
		}
		if mt.Is("image/png") || mt.Is("image/jpeg") {
			inputs = append(inputs, path)
		}
	}
	sort.Strings(inputs)
	return inputs, nil
}
