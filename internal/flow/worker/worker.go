// Package worker implements the process-side top-level entry that
// prepares a task's working directory, materializes its input links,
// invokes the user function, and returns its result or a wrapped error.
// It is addressable at top level (not a closure) so that a process pool
// can resolve it in a freshly spawned worker process.
package worker

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/flowcore/flowcore/internal/flowerr"
	"github.com/flowcore/flowcore/internal/linker"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// Execute runs fn with reqCtx, preparing the per-task working directory
// and symlinking any path-valued arguments into it first. It never lets a
// panic escape: a panicking task function is converted into a
// TaskExecutionFailure carrying a captured stack trace, exactly like a
// returned error.
func Execute(log logger.Logger, fn task.Func, reqCtx task.Context) (result any, err error) {
	if log == nil {
		log = logger.Default
	}

	if mkErr := os.MkdirAll(reqCtx.WorkDir, 0o755); mkErr != nil {
		return nil, fmt.Errorf("worker: create working directory %s: %w", reqCtx.WorkDir, mkErr)
	}

	linkArguments(log, reqCtx)

	defer func() {
		if r := recover(); r != nil {
			err = &flowerr.TaskExecutionFailure{
				TaskName:    reqCtx.Name,
				Fingerprint: reqCtx.Fingerprint,
				Message:     fmt.Sprintf("panic: %v", r),
				Traceback:   string(debug.Stack()),
			}
		}
	}()

	v, callErr := fn(reqCtx)
	if callErr != nil {
		return nil, &flowerr.TaskExecutionFailure{
			TaskName:    reqCtx.Name,
			Fingerprint: reqCtx.Fingerprint,
			Message:     callErr.Error(),
			Traceback:   string(debug.Stack()),
		}
	}
	return v, nil
}

// linkArguments materializes every positional argument, keyword-argument
// value, and one-level sequence element as a symbolic link named for its
// position or key, so user code can address its inputs by a predictable
// path inside the working directory.
func linkArguments(log logger.Logger, reqCtx task.Context) {
	linkOne := func(v any, prefix string) {
		linker.Link(log, v, reqCtx.WorkDir, prefix)
		if seq, ok := v.([]any); ok {
			for i, e := range seq {
				linker.Link(log, e, reqCtx.WorkDir, fmt.Sprintf("%s_%d", prefix, i))
			}
		}
	}

	for i, a := range reqCtx.Args {
		linkOne(a, fmt.Sprintf("arg%d", i))
	}
	for k, v := range reqCtx.Kwargs {
		linkOne(v, k)
	}
}
