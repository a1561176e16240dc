// Package workers runs independent jobs with bounded parallelism.
package workers

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxConcurrent is used when Config.MaxConcurrent is not positive.
const DefaultMaxConcurrent = 4

// Config configures a Pool.
type Config struct {
	MaxConcurrent int
}

// Pool limits how many jobs run at once. A Pool holds no goroutines between
// calls to Run and may be shared.
type Pool struct {
	maxConcurrent int
	logger        *zap.Logger
}

func NewPool(cfg Config, logger *zap.Logger) *Pool {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Pool{
		maxConcurrent: cfg.MaxConcurrent,
		logger:        logger.Named("workers"),
	}
}

// MaxConcurrent returns the parallelism limit.
func (p *Pool) MaxConcurrent() int {
	return p.maxConcurrent
}

// Job is one unit of work.
type Job[T any] struct {
	ID  string
	Run func(ctx context.Context) (T, error)
}

// Result is the outcome of a Job.
type Result[T any] struct {
	ID    string
	Value T
	Err   error
}

// Run executes every job and returns results in job order. A failing job does
// not stop the others. Jobs that have not started when ctx is cancelled
// report ctx.Err() without running. onProgress, if set, is called from the
// caller's goroutine after each completion.
func Run[T any](ctx context.Context, pool *Pool, jobs []Job[T], onProgress func(done, total int)) []Result[T] {
	if len(jobs) == 0 {
		return nil
	}

	results := make([]Result[T], len(jobs))
	finished := make(chan int, len(jobs))
	sem := make(chan struct{}, pool.maxConcurrent)

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { finished <- i }()

			results[i].ID = job.ID
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Value, results[i].Err = job.Run(ctx)
		}()
	}

	go func() {
		wg.Wait()
		close(finished)
	}()

	done := 0
	for range finished {
		done++
		if onProgress != nil {
			onProgress(done, len(jobs))
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	pool.logger.Debug("Batch complete",
		zap.Int("jobs", len(jobs)),
		zap.Int("failed", failed))
	return results
}
