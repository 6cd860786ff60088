package flowconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowcore/flowcore/internal/flowconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_SetGetSnapshot(t *testing.T) {
	b := flowconfig.NewBridge()
	b.Set(map[string]any{"k": "v"})

	val, ok := b.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", val)

	snap := b.Snapshot()
	snap["k"] = "mutated"

	val, ok = b.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", val, "mutating a snapshot must not affect the bridge")
}

func TestBridge_GetMissingKey(t *testing.T) {
	b := flowconfig.NewBridge()
	_, ok := b.Get("missing")
	assert.False(t, ok)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, taskConfig, err := flowconfig.Load("")
	require.NoError(t, err)
	assert.NotZero(t, cfg.MaxParallelism)
	assert.Empty(t, taskConfig)
}

func TestLoad_ReadsEngineAndTaskConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flowcore.yaml")
	contents := `
root_dir: /tmp/flowcore-run
max_parallelism: 4
log_format: json
debug: true
config:
  api_key: secret
  retries: 3
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, taskConfig, err := flowconfig.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/flowcore-run", cfg.RootDir)
	assert.Equal(t, 4, cfg.MaxParallelism)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Debug)

	assert.Equal(t, "secret", taskConfig["api_key"])
	assert.EqualValues(t, 3, taskConfig["retries"])
}
