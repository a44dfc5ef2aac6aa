// Command imageflow runs image workflow graphs against files or folders.
//
// A workflow document (JSON or YAML) describes the node graph; -input
// selects either a single image or a directory to batch over. Exit codes:
// 0 on success, 1 on failure, 2 on usage errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/imageflow/batch"
	"github.com/kbukum/imageflow/config"
	"github.com/kbukum/imageflow/graph"
	"github.com/kbukum/imageflow/logger"
	"github.com/kbukum/imageflow/nodes"
	"github.com/kbukum/imageflow/observability"
	"github.com/kbukum/imageflow/version"
	"github.com/kbukum/imageflow/workflow"
)

// exitError carries a process exit code out of run. An empty message means
// the cause was already reported (flag parsing prints its own errors).
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string { return e.message }

func usageError(format string, args ...any) *exitError {
	return &exitError{code: 2, message: fmt.Sprintf(format, args...)}
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var xe *exitError
		if errors.As(err, &xe) {
			if xe.message != "" {
				fmt.Fprintln(os.Stderr, xe.message)
			}
			os.Exit(xe.code)
		}
		fmt.Fprintln(os.Stderr, "imageflow: "+err.Error())
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	workflow   string
	input      string
	output     string
	workers    int
	configFile string
	verbose    bool
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("imageflow", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `imageflow - run image workflow graphs against files or folders.

Usage:
  imageflow -workflow pipeline.json -input photo.png [-output result.png]
  imageflow -workflow pipeline.yml -input ./shots -output ./processed

Options:
`)
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.workflow, "workflow", "", "Workflow document to run (.json, .yml, or .yaml), or the name of a stored workflow.")
	fs.StringVar(&opts.input, "input", "", "Input image file, or a directory for a batch run.")
	fs.StringVar(&opts.output, "output", "", "Output file (single run) or directory (batch run). Defaults next to each input.")
	fs.IntVar(&opts.workers, "workers", 0, "Parallel evaluations in batch mode. 0 uses one per CPU core.")
	fs.StringVar(&opts.configFile, "config", "", "Config file. Defaults to the imageflow.yml search path.")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log at debug level.")
	showVersion := fs.Bool("version", false, "Print version information and exit.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &exitError{code: 2}
	}
	if *showVersion {
		fmt.Fprintln(out, "imageflow "+version.GetFullVersion())
		return nil
	}
	if opts.workflow == "" {
		fs.Usage()
		return usageError("imageflow: -workflow is required")
	}
	if opts.input == "" {
		fs.Usage()
		return usageError("imageflow: -input is required")
	}

	var loadOpts []config.LoaderOption
	if opts.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(opts.configFile))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if opts.workers > 0 {
		cfg.Batch.Workers = opts.workers
	}
	if opts.output == "" {
		opts.output = cfg.Batch.OutputDir
	}

	logger.Init(cfg.Logging)
	logger.RegisterDefaults("cli", "graph", "evaluator", "batch")
	log := logger.Get("cli")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, shutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdown()

	reg := nodes.Registry()
	if cfg.Telemetry.Enabled {
		nodeLog := logger.Get("graph")
		reg.Wrap(func(t *graph.Type) *graph.Type {
			return graph.WithLogging(graph.WithMetrics(graph.WithTracing(t, "node"), metrics), nodeLog)
		})
	}

	doc, err := loadWorkflow(log, cfg, opts.workflow)
	if err != nil {
		return err
	}
	g, err := workflow.Build(doc, reg)
	if err != nil {
		return err
	}
	targets, missingOut := doc.Targets(g)
	inputIDs, missingIn := doc.InputNodes(g)
	for _, id := range append(missingOut, missingIn...) {
		log.Warn("execution hint names a missing node, ignoring it", logger.Fields("node", id))
	}
	log.Info("workflow loaded", logger.Fields(
		"workflow", doc.Name,
		"nodes", len(doc.Nodes),
		"connections", len(doc.Connections),
	))

	info, err := os.Stat(opts.input)
	if err != nil {
		return fmt.Errorf("input %s: %w", opts.input, err)
	}
	if info.IsDir() {
		return runBatch(ctx, out, log, cfg, opts, g, targets, inputIDs, metrics)
	}
	return runSingle(ctx, out, opts, g, targets, inputIDs)
}

// runSingle evaluates the workflow for one input file.
func runSingle(ctx context.Context, out io.Writer, opts options, g *graph.Graph, targets, inputIDs []string) error {
	output := opts.output
	if output == "" || !writableImagePath(output) {
		// Empty or a directory destination: name the file like a batch
		// run would.
		output = batch.OutputFile(opts.input, output)
	}

	if err := batch.InputBinder(inputIDs...)(g, opts.input); err != nil {
		return err
	}
	eval := &graph.Evaluator{Log: logger.Get("evaluator")}
	res, err := eval.Evaluate(ctx, g, targets...)
	if err != nil {
		return err
	}
	if err := batch.WriteImageOutputs(g, res, opts.input, output); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d computed, %d cached, %s)\n",
		output, res.Stats.Computed, res.Stats.CacheHits, res.Duration.Round(time.Millisecond))
	return nil
}

// runBatch evaluates the workflow for every image in the input directory.
func runBatch(ctx context.Context, out io.Writer, log *logger.Logger, cfg *config.Config, opts options, g *graph.Graph, targets, inputIDs []string, metrics *observability.Metrics) error {
	inputs, err := batch.DiscoverInputs(opts.input)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no images found under %s", opts.input)
	}
	log.Info("starting batch run", logger.Fields(
		"inputs", len(inputs),
		"workers", cfg.Batch.Workers,
		"output_dir", opts.output,
	))

	runner := batch.NewImageRunner(cfg.Batch.Workers, logger.Get("batch"), metrics)
	runner.Targets = targets
	runner.SetInput = batch.InputBinder(inputIDs...)
	summary, err := runner.Run(ctx, g, inputs, opts.output)
	if summary != nil {
		fmt.Fprintf(out, "processed %d/%d images (%d failed, %d skipped) in %s\n",
			summary.Processed, len(inputs), summary.Failed, summary.Skipped,
			summary.Elapsed.Round(time.Millisecond))
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", summary.Failed, len(inputs))
	}
	return nil
}

// loadWorkflow reads the document at path, or resolves a bare name through
// the configured workflow store, the way saved documents are addressed.
func loadWorkflow(log *logger.Logger, cfg *config.Config, arg string) (*workflow.Document, error) {
	if _, err := os.Stat(arg); err == nil || strings.ContainsAny(arg, `/\`) {
		return workflow.Load(arg)
	}
	store, err := workflow.NewStore(cfg.Workflows.Dir, log)
	if err != nil {
		return nil, err
	}
	log.Debug("resolving workflow through the store", logger.Fields(
		"name", arg,
		logger.FieldPath, store.Dir(),
	))
	return store.Load(arg)
}

// writableImagePath reports whether path names a file the encoder can
// write, as opposed to a directory or an unsupported extension.
func writableImagePath(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// initTelemetry starts the OTLP tracer and meter when telemetry is
// enabled. The returned shutdown flushes both; it is a no-op otherwise.
func initTelemetry(ctx context.Context, cfg *config.Config) (*observability.Metrics, func(), error) {
	if !cfg.Telemetry.Enabled {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		Interval:       cfg.Telemetry.Interval,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}
	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		_ = mp.Shutdown(ctx)
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn("meter shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	return metrics, shutdown, nil
}
