// Package aggregation implements the fan-out scanning pipeline: for every
// (scanner, target) pair it dispatches the scanner concurrently, bounded
// by a worker pool, collects results even when individual scanners fail,
// and hands the aggregate to the persistence and degradation-guard layer.
package aggregation

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Job is one unit of work: run a named scanner against a target.
type Job struct {
	Scanner string
	Target  string
	Opts    map[string]interface{}
}

// RunResult pairs a Job with its Output (Output.Err is set, not the
// returned error, when a scanner fails — a failing scanner degrades that
// one result, it never aborts the run).
type RunResult struct {
	Job    Job
	Output *scanner.Output
}

// Pipeline fans a job list out across a bounded worker pool.
type Pipeline struct {
	registry   *scanner.Registry
	maxWorkers int
	timeout    time.Duration
}

// NewPipeline builds a Pipeline. maxWorkers <= 0 defaults to
// runtime.NumCPU()*2, matching the teacher's ingestion orchestrator sizing.
func NewPipeline(registry *scanner.Registry, maxWorkers int, timeout time.Duration) *Pipeline {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * 2
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Pipeline{registry: registry, maxWorkers: maxWorkers, timeout: timeout}
}

// Run executes every job, bounded by p.maxWorkers concurrent scanners, and
// returns one RunResult per job in the same order as jobs.
// Run itself never returns an error for an individual scanner failure;
// it returns an error only when jobs is empty. Cancelling ctx does not make
// Run fail: each scanner sees the cancellation through its job context and
// whatever it returns is recorded in that job's RunResult.
func (p *Pipeline) Run(ctx context.Context, jobs []Job) ([]RunResult, error) {
	if len(jobs) == 0 {
		return nil, omnierrors.ConfigError("no (scanner, target) jobs to run")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	results := make([]RunResult, len(jobs))
	var mu sync.Mutex

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(gctx, p.timeout)
			defer cancel()

			out, err := p.registry.Dispatch(jobCtx, job.Scanner, job.Target, job.Opts)
			if err != nil && out == nil {
				// Dispatch itself failed (unknown scanner name) — this is a
				// configuration problem, not a degraded scanner result.
				out = &scanner.Output{Scanner: job.Scanner, Target: job.Target, Err: err.Error()}
			}

			mu.Lock()
			results[i] = RunResult{Job: job, Output: out}
			mu.Unlock()
			return nil
		})
	}

	// Dispatch failures are captured into Output.Err instead of returned,
	// so every goroutine returns nil and g.Wait() only waits for them;
	// cancellation from the caller (e.g. SIGINT) reaches scanners via gctx
	// and ends up in the per-job Output, not in an error from Wait.
	if err := g.Wait(); err != nil {
		return results, omnierrors.ExternalError(err, "aggregation pipeline interrupted")
	}
	return results, nil
}

// ExpandJobs builds one Job per (scanner, target) combination.
func ExpandJobs(scanners []string, targets []string, opts map[string]interface{}) []Job {
	jobs := make([]Job, 0, len(scanners)*len(targets))
	for _, s := range scanners {
		for _, t := range targets {
			jobs = append(jobs, Job{Scanner: s, Target: t, Opts: opts})
		}
	}
	return jobs
}
