// Package shellrunner executes commands through a POSIX shell, capturing
// their output and optionally persisting a reproducible script recording
// exactly what was run.
package shellrunner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/flowcore/flowcore/internal/flowerr"
	"github.com/flowcore/flowcore/internal/logger"
)

const scriptMode = 0o755

// Run executes command through sh -c (sh as found on PATH) in workingDir, which is created
// if absent. On non-zero exit it returns a *flowerr.ShellFailure carrying
// the captured streams. When commandLogPath is non-empty, Run additionally
// attempts to persist a reproducible script at that path; a failure to do
// so is logged as a warning and never fails the command itself.
func Run(ctx context.Context, log logger.Logger, command, workingDir, commandLogPath string) (string, error) {
	if log == nil {
		log = logger.Default
	}

	absDir, err := filepath.Abs(workingDir)
	if err != nil {
		return "", fmt.Errorf("shellrunner: resolve working directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("shellrunner: create working directory: %w", err)
	}

	if commandLogPath != "" {
		if err := writeCommandLog(commandLogPath, absDir, command); err != nil {
			log.Warnf("shellrunner: failed to write command log %s: %v", commandLogPath, err)
		}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = absDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return stdout.String(), &flowerr.ShellFailure{
			Command:  command,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
	}
	return stdout.String(), nil
}

// writeCommandLog validates command as POSIX shell syntax and, if valid,
// writes a reproducible, executable script recording the working
// directory and the exact command body.
func writeCommandLog(path, workingDir, command string) error {
	if _, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(command), ""); err != nil {
		return fmt.Errorf("command is not valid shell syntax: %w", err)
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# working directory: %s\n", workingDir)
	b.WriteString(command)
	if !strings.HasSuffix(command, "\n") {
		b.WriteString("\n")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), scriptMode); err != nil {
		return err
	}
	return os.Chmod(path, scriptMode)
}
