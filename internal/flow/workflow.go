// Package flow assembles the task registry, scheduler, and configuration
// bridge into the single entry point an embedder or the CLI drives a run
// through.
package flow

import (
	"context"
	"os"

	"github.com/flowcore/flowcore/internal/flow/scheduler"
	"github.com/flowcore/flowcore/internal/flowconfig"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// Workflow owns one task registry and its per-run working directory tree.
// Tasks are registered against it with Task, wired into a DAG by calling
// the returned factories, and executed with Run.
type Workflow struct {
	registry *task.Registry
	bridge   *flowconfig.Bridge
	rootDir  string
	runner   scheduler.Runner
	log      logger.Logger
}

// Option configures a Workflow built by New.
type Option func(*Workflow)

// WithRunner overrides the default LocalRunner, for example with a
// workerpool.ProcessRunner for process-isolated execution.
func WithRunner(r scheduler.Runner) Option {
	return func(w *Workflow) { w.runner = r }
}

// WithLogger overrides the default logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Workflow) { w.log = log }
}

// New returns a Workflow rooted at rootDir, scheduling up to maxParallelism
// tasks concurrently unless overridden with WithRunner.
func New(rootDir string, maxParallelism int, opts ...Option) *Workflow {
	reg := task.NewRegistry(nil)
	w := &Workflow{
		registry: reg,
		bridge:   flowconfig.NewBridge(),
		rootDir:  rootDir,
		log:      logger.Default,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.runner == nil {
		w.runner = scheduler.NewLocalRunner(reg, w.log, maxParallelism)
	}
	return w
}

// Task registers fn under name and returns a factory for building handles
// that invoke it.
func (w *Workflow) Task(name string, fn task.Func) task.Factory {
	return w.registry.Task(name, fn)
}

// SetConfig replaces the configuration mapping forwarded to every task
// invocation for the remainder of this Workflow's life.
func (w *Workflow) SetConfig(cfg map[string]any) {
	w.bridge.Set(cfg)
}

// Run builds the DAG rooted at target and executes it to completion,
// returning the target's result.
func (w *Workflow) Run(ctx context.Context, target *task.Handle) (any, error) {
	sc := scheduler.New(w.registry, w.runner, w.rootDir, w.bridge, w.log)
	return sc.Run(ctx, target)
}

// Registry exposes the underlying task registry, for callers that need to
// resolve a function by name -- a worker process handling its own
// re-exec'd invocation, for instance.
func (w *Workflow) Registry() *task.Registry {
	return w.registry
}

// Cleanup removes the Workflow's entire working directory tree. Removal
// failures are logged as warnings and swallowed, never returned, since
// a failed best-effort cleanup must not itself become a caller-facing
// error.
func (w *Workflow) Cleanup(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if w.rootDir == "" {
		return nil
	}
	if err := os.RemoveAll(w.rootDir); err != nil {
		log := w.log
		if log == nil {
			log = logger.Default
		}
		log.Warnf("flow: cleanup %s: %v", w.rootDir, err)
	}
	return nil
}
