// Package orchestration runs a cut sweep: it expands the supercuts, scores
// every combination against the event data and aggregates the records.
package orchestration

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/supercuts/supercuts/internal/cache"
	"github.com/supercuts/supercuts/internal/dataset"
	"github.com/supercuts/supercuts/internal/identity"
	"github.com/supercuts/supercuts/internal/metrics"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/scoring"
	"github.com/supercuts/supercuts/internal/supercuts"
	"golang.org/x/sync/errgroup"
)

// SweepRunner evaluates every combination of a set of cut definitions.
type SweepRunner struct {
	weightField string
	scaleFactor float64
	workers     int
	logger      *slog.Logger

	// Result caching
	cache    *cache.Cache
	cacheKey string

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventSweepStart       EventType = "sweep_start"
	EventSweepComplete    EventType = "sweep_complete"
	EventSweepCached      EventType = "sweep_cached"
	EventCombinationScore EventType = "combination_scored"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Hash       string
	Num        int
	Total      int
	Record     models.SignificanceRecord
	DurationMs int64
}

// RunnerOption configures a SweepRunner.
type RunnerOption func(*SweepRunner)

// WithWorkers evaluates combinations on n goroutines. n <= 1 runs the sweep
// sequentially.
func WithWorkers(n int) RunnerOption {
	return func(r *SweepRunner) {
		r.workers = n
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *SweepRunner) {
		r.logger = l
	}
}

// WithCache reuses a previous outcome stored under key, and stores new
// outcomes there.
func WithCache(c *cache.Cache, key string) RunnerOption {
	return func(r *SweepRunner) {
		r.cache = c
		r.cacheKey = key
	}
}

// NewSweepRunner creates a runner that weighs events by weightField and
// scales weighted yields by scaleFactor.
func NewSweepRunner(weightField string, scaleFactor float64, opts ...RunnerOption) *SweepRunner {
	r := &SweepRunner{
		weightField: weightField,
		scaleFactor: scaleFactor,
		workers:     1,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *SweepRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *SweepRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	for _, l := range r.listeners {
		l(event)
	}
}

// Run sweeps every combination of defs over ds. It either returns the
// complete outcome, sorted by hash descending, or an error; the first
// failing combination cancels the rest of the sweep.
func (r *SweepRunner) Run(ctx context.Context, ds dataset.Source, defs []models.CutDefinition) (*models.SweepOutcome, error) {
	total, err := supercuts.Count(defs)
	if err != nil {
		return nil, err
	}
	seq, err := supercuts.Generate(defs)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(r.cacheKey); ok && len(cached.Results) == total {
			r.logger.Debug("Using cached sweep", "key", r.cacheKey)
			r.notifyProgress(ProgressEvent{EventType: EventSweepCached, Total: total})
			return cached, nil
		}
	}

	start := time.Now()
	r.logger.Info("Calculating significance for a variety of cuts", "combinations", total, "workers", r.workers)
	r.notifyProgress(ProgressEvent{EventType: EventSweepStart, Total: total})

	results := make([]models.Result, total)
	var done atomic.Int64

	evaluate := func(i int, c models.Combination) error {
		rec, err := scoring.Evaluate(ds, c, r.weightField, r.scaleFactor)
		if err != nil {
			return fmt.Errorf("combination %d: %w", i, err)
		}
		h := identity.Hash(c)
		results[i] = models.Result{Hash: h, Details: rec}

		n := int(done.Add(1))
		r.notifyProgress(ProgressEvent{
			EventType: EventCombinationScore,
			Hash:      h,
			Num:       n,
			Total:     total,
			Record:    rec,
		})
		return nil
	}

	if r.workers <= 1 {
		err = r.runSequential(ctx, seq, evaluate)
	} else {
		err = r.runConcurrent(ctx, seq, evaluate)
	}
	if err != nil {
		return nil, err
	}

	SortByHash(results)
	if err := checkUnique(results); err != nil {
		return nil, err
	}

	outcome := &models.SweepOutcome{
		Results: results,
		Summary: summarize(results, r.scaleFactor, time.Since(start)),
	}
	r.logger.Info("Calculated significance", "combinations", len(results), "duration", time.Since(start))
	r.notifyProgress(ProgressEvent{EventType: EventSweepComplete, Total: total, DurationMs: outcome.Summary.DurationMs})

	if r.cache != nil {
		if err := r.cache.Put(r.cacheKey, outcome); err != nil {
			r.logger.Warn("Failed to cache sweep outcome", "error", err)
		}
	}
	return outcome, nil
}

func (r *SweepRunner) runSequential(ctx context.Context, seq iter.Seq[models.Combination], evaluate func(int, models.Combination) error) error {
	i := 0
	var err error
	seq(func(c models.Combination) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		if err = evaluate(i, c); err != nil {
			return false
		}
		i++
		return true
	})
	return err
}

// runConcurrent fans combinations out over an errgroup. Each goroutine
// writes only its own slot of the results slice.
func (r *SweepRunner) runConcurrent(ctx context.Context, seq iter.Seq[models.Combination], evaluate func(int, models.Combination) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	i := 0
	seq(func(c models.Combination) bool {
		if gCtx.Err() != nil {
			return false
		}
		idx := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return evaluate(idx, c)
		})
		i++
		return true
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func checkUnique(sorted []models.Result) error {
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Hash == sorted[i-1].Hash {
			return &models.SchemaError{Reason: fmt.Sprintf("two combinations share identity %s", sorted[i].Hash)}
		}
	}
	return nil
}

func summarize(results []models.Result, scaleFactor float64, elapsed time.Duration) models.SweepSummary {
	scaled := make([]float64, len(results))
	for i, res := range results {
		scaled[i] = res.Details.Scaled
	}

	s := models.SweepSummary{
		Combinations: len(results),
		Yield:        metrics.Summarize(scaled),
		ScaleFactor:  scaleFactor,
		DurationMs:   elapsed.Milliseconds(),
	}
	if top := Top(results, 1); len(top) == 1 {
		best := top[0]
		s.Best = &best
	}
	return s
}
