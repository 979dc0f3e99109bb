package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/supercuts/supercuts/internal/cache"
	"github.com/supercuts/supercuts/internal/dataset"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/orchestration"
	"github.com/supercuts/supercuts/internal/projectconfig"
	"github.com/supercuts/supercuts/internal/reporting"
	"github.com/supercuts/supercuts/internal/spinner"
	"github.com/supercuts/supercuts/internal/supercuts"
	"github.com/supercuts/supercuts/internal/utils"
	"github.com/supercuts/supercuts/internal/weights"
	"golang.org/x/term"
)

// optimizeOptions holds the optimize flags after project defaults are applied.
type optimizeOptions struct {
	signals       []string
	supercutsPath string
	eventWeight   string
	weightsFile   string
	output        string
	parallel      bool
	workers       int
	cache         bool
	cacheDir      string
	top           int
	verbose       bool
}

func newOptimizeCommand() *cobra.Command {
	var opts optimizeOptions

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Sweep all cut combinations over a signal dataset",
		Long: `Sweep every combination of the cuts in a supercuts file over the signal
dataset and write the yield of each combination, keyed by its hash.

The scale factor comes from the weights file entry whose dataset ID appears in
the first signal file name. Defaults for event weight, weights file, output,
workers and caching are read from .supercuts.yaml when present; flags win.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyProjectDefaults(cmd, &opts); err != nil {
				return err
			}
			return optimizeCommandE(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.signals, "signal", nil, "Signal event file or glob (can be repeated)")
	cmd.Flags().StringVar(&opts.supercutsPath, "supercuts", "", "JSON file with the cut definitions")
	cmd.Flags().StringVar(&opts.eventWeight, "eventWeight", projectconfig.DefaultEventWeight, "Field holding the per-event weight")
	cmd.Flags().StringVar(&opts.weightsFile, "weightsFile", projectconfig.DefaultWeightsFile, "YAML file with per-sample normalization metadata")
	cmd.Flags().StringVarP(&opts.output, "output", "o", projectconfig.DefaultOutput, "Output JSON file for results")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Evaluate combinations concurrently")
	cmd.Flags().IntVar(&opts.workers, "workers", projectconfig.DefaultWorkers, "Number of concurrent workers (requires --parallel)")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "Reuse a cached sweep with identical inputs")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", projectconfig.DefaultCacheDir, "Cache directory for storing sweeps")
	cmd.Flags().IntVar(&opts.top, "top", projectconfig.DefaultTop, "Number of best combinations to print (0 for none)")
	_ = cmd.MarkFlagRequired("signal")
	_ = cmd.MarkFlagRequired("supercuts")

	return cmd
}

// applyProjectDefaults fills every flag the user did not set from
// .supercuts.yaml. Relative paths from the file are resolved against its
// directory.
func applyProjectDefaults(cmd *cobra.Command, opts *optimizeOptions) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("eventWeight") {
		opts.eventWeight = cfg.Defaults.EventWeight
	}
	if !flags.Changed("weightsFile") {
		opts.weightsFile = utils.ResolvePath(cfg.Defaults.WeightsFile, cfg.Dir)
	}
	if !flags.Changed("output") {
		opts.output = utils.ResolvePath(cfg.Defaults.Output, cfg.Dir)
	}
	if !flags.Changed("parallel") && cfg.Defaults.Parallel != nil {
		opts.parallel = *cfg.Defaults.Parallel
	}
	if !flags.Changed("workers") {
		opts.workers = cfg.Defaults.Workers
	}
	if !flags.Changed("cache") && cfg.Cache.Enabled != nil {
		opts.cache = *cfg.Cache.Enabled
	}
	if !flags.Changed("cache-dir") {
		opts.cacheDir = utils.ResolvePath(cfg.Cache.Dir, cfg.Dir)
	}
	if !flags.Changed("top") {
		opts.top = cfg.Defaults.Top
	}
	opts.verbose, _ = flags.GetBool("verbose")
	return nil
}

func optimizeCommandE(cmd *cobra.Command, opts optimizeOptions) error {
	out := cmd.OutOrStdout()
	logger := slog.Default()

	signals, err := utils.ExpandGlobs(opts.signals)
	if err != nil {
		return err
	}

	// The raw bytes are part of the cache key.
	cutsData, err := os.ReadFile(opts.supercutsPath)
	if err != nil {
		return &models.DataSourceError{Source: opts.supercutsPath, Err: err}
	}
	defs, err := supercuts.Parse(cutsData)
	if err != nil {
		return fmt.Errorf("loading %s: %w", opts.supercutsPath, err)
	}

	ds, err := loadSignal(signals, defs, opts.eventWeight)
	if err != nil {
		return err
	}
	logger.Debug("Loaded signal", "files", len(signals), "events", ds.Len())

	wf, err := weights.Load(opts.weightsFile, weights.WithLogger(logger))
	if err != nil {
		return err
	}
	scaleFactor, err := wf.ScaleFactorForFile(signals[0])
	if err != nil {
		return err
	}

	workers := 1
	if opts.parallel {
		workers = max(opts.workers, 1)
	}
	runnerOpts := []orchestration.RunnerOption{
		orchestration.WithWorkers(workers),
		orchestration.WithLogger(logger),
	}
	if opts.cache {
		key, err := cache.Key(cutsData, signals, opts.eventWeight, scaleFactor)
		if err != nil {
			return &models.DataSourceError{Err: fmt.Errorf("computing cache key: %w", err)}
		}
		runnerOpts = append(runnerOpts, orchestration.WithCache(cache.New(opts.cacheDir), key))
	}
	runner := orchestration.NewSweepRunner(opts.eventWeight, scaleFactor, runnerOpts...)

	stop := attachProgress(runner, out, cmd.ErrOrStderr(), opts.verbose)
	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer cancel()

	outcome, err := runner.Run(ctx, ds, defs)
	stop()
	if err != nil {
		return err
	}

	if err := orchestration.SaveResults(opts.output, outcome.Results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	fmt.Fprintln(out, reporting.FormatSummary(outcome.Summary)) //nolint:errcheck
	if opts.top > 0 {
		fmt.Fprintln(out, reporting.FormatTop(outcome.Results, opts.top)) //nolint:errcheck
	}
	fmt.Fprintf(out, "Results saved to: %s\n", opts.output) //nolint:errcheck
	return nil
}

// loadSignal reads the cut fields and the weight field from every signal
// file. A cut field the files do not have is a definition error, not a
// data problem.
func loadSignal(paths []string, defs []models.CutDefinition, weightField string) (*dataset.Columns, error) {
	cutFields := make(map[string]bool, len(defs))
	fields := make([]string, 0, len(defs)+1)
	for _, d := range defs {
		cutFields[d.Field] = true
		fields = append(fields, d.Field)
	}
	fields = append(fields, weightField)

	ds, err := dataset.LoadAll(paths, fields...)
	if err != nil {
		var dsErr *models.DataSourceError
		if errors.Is(err, dataset.ErrNoColumn) && errors.As(err, &dsErr) && cutFields[dsErr.Field] {
			return nil, &models.SchemaError{
				Field:  dsErr.Field,
				Reason: fmt.Sprintf("not present in %s", filepath.Base(dsErr.Source)),
			}
		}
		return nil, err
	}
	return ds, nil
}

// attachProgress prints per-combination lines in verbose mode and a spinner
// when stderr is a terminal. The returned function stops the spinner.
func attachProgress(runner *orchestration.SweepRunner, out, errOut io.Writer, verbose bool) func() {
	if verbose {
		runner.OnProgress(func(e orchestration.ProgressEvent) {
			switch e.EventType {
			case orchestration.EventSweepStart:
				fmt.Fprintf(out, "Sweeping %d combinations\n", e.Total) //nolint:errcheck
			case orchestration.EventCombinationScore:
				fmt.Fprintf(out, "[%d/%d] %s raw=%d weighted=%g scaled=%g\n", //nolint:errcheck
					e.Num, e.Total, e.Hash, e.Record.Raw, e.Record.Weighted, e.Record.Scaled)
			case orchestration.EventSweepCached:
				fmt.Fprintf(out, "Using cached sweep of %d combinations\n", e.Total) //nolint:errcheck
			case orchestration.EventSweepComplete:
				fmt.Fprintf(out, "Sweep finished in %dms\n", e.DurationMs) //nolint:errcheck
			}
		})
		return func() {}
	}

	f, ok := errOut.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	s := spinner.Start(errOut, "Loading sweep")
	runner.OnProgress(func(e orchestration.ProgressEvent) {
		if e.EventType == orchestration.EventCombinationScore {
			s.Update(fmt.Sprintf("Scoring combinations %d/%d", e.Num, e.Total))
		}
	})
	return s.Stop
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
