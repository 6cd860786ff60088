// Package workerpool implements the process-isolated strategy for
// executing tasks: the scheduler's own binary is re-exec'd as a worker
// subprocess, which resolves the task function by name from its own
// registry (the same one the driver registered against) and reports back
// over a gob-encoded pipe. Only the task's name, arguments, and
// configuration cross the process boundary -- never a function value.
package workerpool

import "encoding/gob"

func init() {
	// Args, Kwargs, and Result travel as interface{} values; gob requires
	// every concrete type crossing that boundary to be registered.
	// Tasks that exchange other concrete types must gob.Register them too.
	for _, v := range []any{
		int(0), int64(0), float64(0), string(""), bool(false),
		[]any{}, map[string]any{},
	} {
		gob.Register(v)
	}
}

// Request describes one task invocation to run inside a worker process.
type Request struct {
	Fingerprint string
	Name        string
	Args        []any
	Kwargs      map[string]any
	WorkDir     string
	Config      map[string]any
}

// Response reports a worker's outcome for one Request.
type Response struct {
	Fingerprint string
	Result      any
	ErrMessage  string
	Traceback   string
}
