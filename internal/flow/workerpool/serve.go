package workerpool

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/flowcore/flowcore/internal/flow/worker"
	"github.com/flowcore/flowcore/internal/flowerr"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// Serve is the worker process's top-level function: it decodes exactly
// one Request from in, executes it against reg, and encodes exactly one
// Response to out. It must be addressable at top level (not a closure) so
// that a re-exec'd worker process can call it directly from main, before
// any other engine state is constructed.
func Serve(reg *task.Registry, log logger.Logger, in io.Reader, out io.Writer) error {
	if log == nil {
		log = logger.Default
	}

	var req Request
	if err := gob.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("workerpool: decode request: %w", err)
	}

	fn, ok := reg.Lookup(req.Name)
	if !ok {
		return encodeResponse(out, Response{
			Fingerprint: req.Fingerprint,
			ErrMessage:  fmt.Sprintf("worker: no task function registered under name %q", req.Name),
		})
	}

	result, err := worker.Execute(log, fn, task.Context{
		Fingerprint: req.Fingerprint,
		Name:        req.Name,
		Args:        req.Args,
		Kwargs:      req.Kwargs,
		WorkDir:     req.WorkDir,
		Config:      req.Config,
	})
	if err != nil {
		var taskErr *flowerr.TaskExecutionFailure
		resp := Response{Fingerprint: req.Fingerprint, ErrMessage: err.Error()}
		if ok := asTaskExecutionFailure(err, &taskErr); ok {
			resp.ErrMessage = taskErr.Message
			resp.Traceback = taskErr.Traceback
		}
		return encodeResponse(out, resp)
	}

	return encodeResponse(out, Response{Fingerprint: req.Fingerprint, Result: result})
}

func asTaskExecutionFailure(err error, target **flowerr.TaskExecutionFailure) bool {
	taskErr, ok := err.(*flowerr.TaskExecutionFailure)
	if !ok {
		return false
	}
	*target = taskErr
	return true
}

func encodeResponse(out io.Writer, resp Response) error {
	if err := gob.NewEncoder(out).Encode(resp); err != nil {
		return fmt.Errorf("workerpool: encode response: %w", err)
	}
	return nil
}
