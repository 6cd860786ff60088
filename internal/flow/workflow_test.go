package flow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/flowcore/flowcore/internal/flow"
	"github.com/flowcore/flowcore/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_RunAndCleanup(t *testing.T) {
	root := filepath.Join(t.TempDir(), "run")
	w := flow.New(root, 2)

	produce := w.Task("produce", func(ctx task.Context) (any, error) {
		return ctx.Args[0].(int) * 2, nil
	})
	consume := w.Task("consume", func(ctx task.Context) (any, error) {
		return ctx.Args[0].(int) + 1, nil
	})

	h := consume(produce(3))
	result, err := w.Run(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, 7, result)

	require.NoError(t, w.Cleanup(context.Background()))
	_, statErr := os.Stat(root)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWorkflow_SetConfigReachesTasks(t *testing.T) {
	root := filepath.Join(t.TempDir(), "run")
	w := flow.New(root, 1)
	w.SetConfig(map[string]any{"greeting": "hi"})

	var got string
	readConfig := w.Task("read-config", func(ctx task.Context) (any, error) {
		got = ctx.Config["greeting"].(string)
		return nil, nil
	})

	_, err := w.Run(context.Background(), readConfig())
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestWorkflow_CleanupOnMissingRootIsNoop(t *testing.T) {
	w := flow.New(filepath.Join(t.TempDir(), "never-created"), 1)
	assert.NoError(t, w.Cleanup(context.Background()))
}

func TestWorkflow_CleanupSwallowsRemovalError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("cannot test permission errors as root")
	}

	root := t.TempDir()
	blocked := filepath.Join(root, "blocked")
	require.NoError(t, os.MkdirAll(blocked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocked, "file.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Chmod(blocked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	w := flow.New(root, 1)
	assert.NoError(t, w.Cleanup(context.Background()))

	_, statErr := os.Stat(filepath.Join(blocked, "file.txt"))
	assert.NoError(t, statErr, "removal should have failed and left the file in place")
}
