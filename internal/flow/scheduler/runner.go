package scheduler

import (
	"context"

	"github.com/flowcore/flowcore/internal/task"
)

// Completion reports the outcome of exactly one submitted task.
type Completion struct {
	Fingerprint string
	Result      any
	Err         error
}

// Runner executes one task invocation, asynchronously, isolated from the
// driver by whatever boundary the implementation chooses (a separate OS
// process, a goroutine, or a thread pool). Submit must not block beyond
// accepting the work; it sends exactly one Completion to done when the
// task finishes, whether it succeeds or fails.
type Runner interface {
	Submit(ctx context.Context, reqCtx task.Context, done chan<- Completion)
}
