package workerpool_test

import (
	"bytes"
	"context"
	"encoding/gob"
	"testing"

	"github.com/flowcore/flowcore/internal/flow/scheduler"
	"github.com/flowcore/flowcore/internal/flow/workerpool"
	"github.com/flowcore/flowcore/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeRequest(w *bytes.Buffer, req workerpool.Request) error {
	return gob.NewEncoder(w).Encode(req)
}

func decodeResponse(t *testing.T, r *bytes.Buffer) workerpool.Response {
	t.Helper()
	var resp workerpool.Response
	require.NoError(t, gob.NewDecoder(r).Decode(&resp))
	return resp
}

// TestServe_RoundTrip exercises the protocol at the encode/decode level
// without spawning a subprocess: it feeds Serve a gob-encoded Request over
// an in-memory pipe and checks the gob-encoded Response it writes back.
func TestServe_RoundTrip(t *testing.T) {
	reg := task.NewRegistry(nil)
	reg.Task("double", func(ctx task.Context) (any, error) {
		return ctx.Args[0].(int) * 2, nil
	})

	var in bytes.Buffer
	require.NoError(t, encodeRequest(&in, workerpool.Request{
		Fingerprint: "abc123",
		Name:        "double",
		Args:        []any{21},
		WorkDir:     t.TempDir(),
	}))

	var out bytes.Buffer
	err := workerpool.Serve(reg, nil, &in, &out)
	require.NoError(t, err)

	resp := decodeResponse(t, &out)
	assert.Equal(t, "abc123", resp.Fingerprint)
	assert.Equal(t, 42, resp.Result)
	assert.Empty(t, resp.ErrMessage)
}

func TestServe_UnknownTask(t *testing.T) {
	reg := task.NewRegistry(nil)

	var in bytes.Buffer
	require.NoError(t, encodeRequest(&in, workerpool.Request{
		Fingerprint: "fp1",
		Name:        "nope",
		WorkDir:     t.TempDir(),
	}))

	var out bytes.Buffer
	require.NoError(t, workerpool.Serve(reg, nil, &in, &out))

	resp := decodeResponse(t, &out)
	assert.Contains(t, resp.ErrMessage, "no task function registered")
}

func TestServe_TaskError(t *testing.T) {
	reg := task.NewRegistry(nil)
	reg.Task("explode", func(ctx task.Context) (any, error) {
		panic("kaboom")
	})

	var in bytes.Buffer
	require.NoError(t, encodeRequest(&in, workerpool.Request{
		Fingerprint: "fp2",
		Name:        "explode",
		WorkDir:     t.TempDir(),
	}))

	var out bytes.Buffer
	require.NoError(t, workerpool.Serve(reg, nil, &in, &out))

	resp := decodeResponse(t, &out)
	assert.Contains(t, resp.ErrMessage, "kaboom")
}

// fakeRunner-free test of ProcessRunner's submission path isn't feasible
// without a real subprocess (it re-execs a binary), so ProcessRunner is
// exercised indirectly through its wiring: this checks that Submit reports
// context cancellation without ever spawning a process.
func TestProcessRunner_ContextCancelledBeforeDispatch(t *testing.T) {
	pr := workerpool.NewProcessRunner("/bin/does-not-matter", "--flowcore-worker", 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan scheduler.Completion, 1)
	pr.Submit(ctx, task.Context{Fingerprint: "fp"}, done)

	c := <-done
	assert.Equal(t, "fp", c.Fingerprint)
	assert.Error(t, c.Err)
}
