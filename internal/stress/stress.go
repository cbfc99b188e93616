// Package stress runs the primitives under contention and checks the
// property each one promises, such as mutual exclusion for the locks.
//
// A Runner executes a set of named scenarios, either one after the other or
// concurrently, and aggregates their failures into one error.
package stress

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Params sizes a scenario.
type Params struct {
	// Threads is the number of concurrent workers.
	Threads int

	// Iterations is the number of operations per worker.
	Iterations int
}

// Scenario is one named stress check. Run returns an error describing the
// first violated property, or nil.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, p Params) error
}

// Options configures a Runner.
type Options struct {
	Params

	// Scenarios selects scenarios by name; empty selects all.
	Scenarios []string

	// Parallel runs the selected scenarios concurrently.
	Parallel bool
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Report is the outcome of a run.
type Report struct {
	RunID   string
	Results []Result
}

// Err returns the failures of the run combined into one error, or nil.
func (r *Report) Err() error {
	var merr *multierror.Error
	for _, res := range r.Results {
		if res.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	return merr.ErrorOrNil()
}

// Failed returns the names of the failed scenarios.
func (r *Report) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if res.Err != nil {
			names = append(names, res.Name)
		}
	}
	return names
}

// Runner executes scenarios.
type Runner struct {
	logger    *log.Logger
	opts      Options
	scenarios []Scenario
}

// New returns a Runner for the scenarios selected by opts.
func New(logger *log.Logger, opts Options) (*Runner, error) {
	if opts.Threads < 1 {
		return nil, fmt.Errorf("threads must be positive, got %d", opts.Threads)
	}
	if opts.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", opts.Iterations)
	}

	selected, err := Select(opts.Scenarios)
	if err != nil {
		return nil, err
	}

	return &Runner{
		logger:    logger,
		opts:      opts,
		scenarios: selected,
	}, nil
}

// Select returns the scenarios with the given names, in registry order.
// No names selects all scenarios.
func Select(names []string) ([]Scenario, error) {
	all := Scenarios()
	if len(names) == 0 {
		return all, nil
	}

	var selected []Scenario
	for _, s := range all {
		if slices.Contains(names, s.Name) {
			selected = append(selected, s)
		}
	}
	for _, name := range names {
		if !slices.ContainsFunc(all, func(s Scenario) bool { return s.Name == name }) {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
	}
	return selected, nil
}

// Run executes the scenarios and returns the report. The returned error is
// Report.Err, or the context's error if ctx ended first.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(r.scenarios)),
	}
	logger := r.logger.With("run_id", report.RunID)

	logger.Info("stress run starting",
		"scenarios", len(r.scenarios),
		"threads", r.opts.Threads,
		"iterations", r.opts.Iterations,
		"parallel", r.opts.Parallel,
	)

	g, gctx := errgroup.WithContext(ctx)
	if !r.opts.Parallel {
		g.SetLimit(1)
	}

	for i, s := range r.scenarios {
		g.Go(func() error {
			// Scenario failures are reported, not propagated: the other
			// scenarios keep running. Only cancellation stops the group.
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Results[i] = r.runOne(gctx, logger, s)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("stress run %s: %w", report.RunID, err)
	}

	if err := report.Err(); err != nil {
		logger.Error("stress run failed", "failed", report.Failed())
		return report, err
	}
	logger.Info("stress run passed")
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, logger *log.Logger, s Scenario) Result {
	logger = logger.With("scenario", s.Name)
	logger.Debug("scenario starting")

	start := time.Now()
	err := s.Run(ctx, r.opts.Params)
	res := Result{Name: s.Name, Duration: time.Since(start), Err: err}

	if err != nil {
		logger.Error("scenario failed", "duration", res.Duration, "err", err)
	} else {
		logger.Info("scenario passed", "duration", res.Duration)
	}
	return res
}
