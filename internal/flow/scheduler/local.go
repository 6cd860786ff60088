package scheduler

import (
	"context"
	"fmt"

	"github.com/flowcore/flowcore/internal/flow/worker"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// LocalRunner executes tasks as goroutines in the calling process, bounded
// by a semaphore. It is the thread-pool strategy the design notes call out
// as acceptable when tasks are CPU-light or primarily shell out, and is
// also what drives this package's own tests without needing a second
// process.
type LocalRunner struct {
	registry *task.Registry
	log      logger.Logger
	sem      chan struct{}
}

// NewLocalRunner returns a Runner that executes up to maxParallel tasks
// concurrently in-process, resolving each by name against reg.
func NewLocalRunner(reg *task.Registry, log logger.Logger, maxParallel int) *LocalRunner {
	if log == nil {
		log = logger.Default
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &LocalRunner{registry: reg, log: log, sem: make(chan struct{}, maxParallel)}
}

// Submit implements Runner.
func (r *LocalRunner) Submit(ctx context.Context, reqCtx task.Context, done chan<- Completion) {
	go func() {
		select {
		case r.sem <- struct{}{}:
		case <-ctx.Done():
			done <- Completion{Fingerprint: reqCtx.Fingerprint, Err: ctx.Err()}
			return
		}
		defer func() { <-r.sem }()

		fn, ok := r.registry.Lookup(reqCtx.Name)
		if !ok {
			done <- Completion{
				Fingerprint: reqCtx.Fingerprint,
				Err:         fmt.Errorf("scheduler: no task function registered under name %q", reqCtx.Name),
			}
			return
		}

		result, err := worker.Execute(r.log, fn, reqCtx)
		done <- Completion{Fingerprint: reqCtx.Fingerprint, Result: result, Err: err}
	}()
}
