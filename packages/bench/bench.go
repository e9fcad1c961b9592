package bench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
)

// Executor executes one parsed reqline
type Executor interface {
	Execute(ctx context.Context, d *parser.Descriptor) (*runner.Report, error)
}

// Result is the outcome of a bench run
type Result struct {
	Summary    *Summary          `json:"summary"`
	Thresholds []ThresholdResult `json:"thresholds,omitempty"`
	Passed     bool              `json:"passed"`
}

// Runner repeats a single reqline
type Runner struct {
	config    *Config
	executor  Executor
	scheduler *Scheduler
	metrics   *Metrics
}

func NewRunner(config *Config, executor Executor) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Runner{
		config:    config,
		executor:  executor,
		scheduler: NewScheduler(config),
		metrics:   NewMetrics(),
	}
}

// Run parses reqline once and executes it Iterations times. A malformed
// reqline fails before any request is sent. Cancelling ctx stops scheduling
// and returns the summary of what completed.
func (r *Runner) Run(ctx context.Context, reqline string) (*Result, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d, err := parser.Parse(reqline)
	if err != nil {
		return nil, err
	}

	r.metrics.Start()

	var wg sync.WaitGroup
	for i := 0; i < r.config.Iterations; i++ {
		if err := r.scheduler.Wait(ctx); err != nil {
			break
		}
		if err := r.scheduler.Acquire(ctx); err != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer r.scheduler.Release()
			r.iterate(ctx, d)
		}()
	}
	wg.Wait()

	r.metrics.Stop()

	summary := r.metrics.GetSummary()
	result := &Result{Summary: summary, Passed: true}
	if r.config.Thresholds.HasThresholds() {
		result.Thresholds = EvaluateThresholds(summary, r.config.Thresholds)
		for _, tr := range result.Thresholds {
			if !tr.Passed {
				result.Passed = false
				break
			}
		}
	}

	return result, nil
}

func (r *Runner) iterate(ctx context.Context, d *parser.Descriptor) {
	start := time.Now()
	report, err := r.executor.Execute(ctx, d)
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.Record(0, elapsed, err)
		return
	}
	r.metrics.Record(report.Response.HTTPStatus, elapsed, nil)
}
