package shellrunner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/flowcore/flowcore/internal/flowerr"
	"github.com/flowcore/flowcore/internal/shellrunner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	out, err := shellrunner.Run(context.Background(), nil, "echo hello", dir, "")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRun_CreatesWorkingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "workdir")
	_, err := shellrunner.Run(context.Background(), nil, "pwd", dir, "")
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestRun_NonZeroExitIsShellFailure(t *testing.T) {
	dir := t.TempDir()
	_, err := shellrunner.Run(context.Background(), nil, "exit 7", dir, "")
	require.Error(t, err)

	var shellErr *flowerr.ShellFailure
	require.ErrorAs(t, err, &shellErr)
	assert.Equal(t, 7, shellErr.ExitCode)
}

func TestRun_CapturesStderr(t *testing.T) {
	dir := t.TempDir()
	_, err := shellrunner.Run(context.Background(), nil, "echo boom 1>&2; exit 1", dir, "")
	require.Error(t, err)

	var shellErr *flowerr.ShellFailure
	require.ErrorAs(t, err, &shellErr)
	assert.Equal(t, "boom\n", shellErr.Stderr)
}

func TestRun_WritesReproducibleCommandLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, ".command.sh")

	_, err := shellrunner.Run(context.Background(), nil, "echo from-script", dir, logPath)
	require.NoError(t, err)

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "#!/bin/sh")
	assert.Contains(t, string(content), dir)
	assert.Contains(t, string(content), "echo from-script")
}

func TestRun_CommandLogWriteFailureDoesNotFailCommand(t *testing.T) {
	dir := t.TempDir()
	invalidLogPath := filepath.Join(dir, "no-such-parent-\x00", "cmd.sh")

	out, err := shellrunner.Run(context.Background(), nil, "echo still-runs", dir, invalidLogPath)
	require.NoError(t, err)
	assert.Equal(t, "still-runs\n", out)
}
