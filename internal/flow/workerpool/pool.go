package workerpool

import (
	"context"
	"encoding/gob"
	"fmt"
	"os/exec"

	"github.com/google/uuid"

	"github.com/flowcore/flowcore/internal/flow/scheduler"
	"github.com/flowcore/flowcore/internal/flowerr"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// ProcessRunner submits each task to a freshly spawned copy of the
// driver's own binary, invoked with workerFlag so that its main function
// dispatches into Serve instead of the normal CLI. It implements
// scheduler.Runner.
type ProcessRunner struct {
	binaryPath string
	workerFlag string
	log        logger.Logger
	sem        chan struct{}
}

// NewProcessRunner returns a Runner that re-execs binaryPath with
// workerFlag for every task, bounding concurrency at maxParallel.
func NewProcessRunner(binaryPath, workerFlag string, maxParallel int, log logger.Logger) *ProcessRunner {
	if log == nil {
		log = logger.Default
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &ProcessRunner{
		binaryPath: binaryPath,
		workerFlag: workerFlag,
		log:        log,
		sem:        make(chan struct{}, maxParallel),
	}
}

// Submit implements scheduler.Runner.
func (p *ProcessRunner) Submit(ctx context.Context, reqCtx task.Context, done chan<- scheduler.Completion) {
	go func() {
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			done <- scheduler.Completion{Fingerprint: reqCtx.Fingerprint, Err: ctx.Err()}
			return
		}
		defer func() { <-p.sem }()

		spawnID := uuid.NewString()
		p.log.Debugf("workerpool: spawning worker %s for task %s (%s)", spawnID, reqCtx.Name, reqCtx.Fingerprint)

		resp, err := p.runOnce(ctx, Request{
			Fingerprint: reqCtx.Fingerprint,
			Name:        reqCtx.Name,
			Args:        reqCtx.Args,
			Kwargs:      reqCtx.Kwargs,
			WorkDir:     reqCtx.WorkDir,
			Config:      reqCtx.Config,
		})
		if err != nil {
			done <- scheduler.Completion{Fingerprint: reqCtx.Fingerprint, Err: err}
			return
		}
		if resp.ErrMessage != "" {
			done <- scheduler.Completion{
				Fingerprint: reqCtx.Fingerprint,
				Err: &flowerr.TaskExecutionFailure{
					TaskName:    reqCtx.Name,
					Fingerprint: reqCtx.Fingerprint,
					Message:     resp.ErrMessage,
					Traceback:   resp.Traceback,
				},
			}
			return
		}
		p.log.Debugf("workerpool: worker %s for task %s exited cleanly", spawnID, reqCtx.Name)
		done <- scheduler.Completion{Fingerprint: reqCtx.Fingerprint, Result: resp.Result}
	}()
}

func (p *ProcessRunner) runOnce(ctx context.Context, req Request) (Response, error) {
	cmd := exec.CommandContext(ctx, p.binaryPath, p.workerFlag)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Response{}, fmt.Errorf("workerpool: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Response{}, fmt.Errorf("workerpool: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return Response{}, fmt.Errorf("workerpool: start worker process: %w", err)
	}

	encodeErrCh := make(chan error, 1)
	go func() {
		encodeErrCh <- gob.NewEncoder(stdin).Encode(req)
		stdin.Close()
	}()

	var resp Response
	decodeErr := gob.NewDecoder(stdout).Decode(&resp)
	encodeErr := <-encodeErrCh
	waitErr := cmd.Wait()

	if encodeErr != nil {
		return Response{}, fmt.Errorf("workerpool: encode request: %w", encodeErr)
	}
	if decodeErr != nil {
		if waitErr != nil {
			return Response{}, fmt.Errorf("workerpool: worker process failed: %w", waitErr)
		}
		return Response{}, fmt.Errorf("workerpool: decode response: %w", decodeErr)
	}
	return resp, nil
}
