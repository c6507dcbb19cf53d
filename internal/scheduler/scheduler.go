// Package scheduler drives the periodic check loops, one per source.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/domain"
)

type Runner interface {
	RunOnce(ctx context.Context) (domain.Outcome, error)
}

type Job struct {
	Name     string
	Interval time.Duration
	Runner   Runner
}

type Scheduler struct {
	Logger *zap.Logger
	Jobs   []Job
}

func New(logger *zap.Logger, jobs []Job) *Scheduler {
	return &Scheduler{Logger: logger, Jobs: jobs}
}

// Run starts one loop per job. Each loop does an immediate pass, then
// runs each tick. A non-positive interval disables the job. Blocks
// until ctx is cancelled and every loop has returned.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range s.Jobs {
		if j.Interval <= 0 {
			s.Logger.Info("checker_disabled", zap.String("source", j.Name))
			continue
		}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			s.loop(ctx, j)
		}(j)
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	s.Logger.Info("checker_started",
		zap.String("source", j.Name),
		zap.Duration("interval", j.Interval))

	t := time.NewTicker(j.Interval)
	defer t.Stop()

	// immediate pass
	s.runOnce(ctx, j)

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("checker_stopped", zap.String("source", j.Name))
			return
		case <-t.C:
			s.runOnce(ctx, j)
		}
	}
}

// runOnce shields the loop from a panicking pass so one bad page
// cannot take the whole source offline until restart.
func (s *Scheduler) runOnce(ctx context.Context, j Job) {
	defer func() {
		if rec := recover(); rec != nil {
			s.Logger.Error("checker_panic",
				zap.String("source", j.Name),
				zap.Any("panic", rec))
		}
	}()

	out, err := j.Runner.RunOnce(ctx)
	if err != nil {
		// the runner logs its own failure detail
		return
	}
	s.Logger.Debug("checker_pass",
		zap.String("source", j.Name),
		zap.String("outcome", string(out)))
}
