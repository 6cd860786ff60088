// Package linker materializes task input arguments as symbolic links
// inside a per-task working directory, so user code can address its
// inputs by a stable, predictable name regardless of their real location.
package linker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowcore/flowcore/internal/fileutil"
	"github.com/flowcore/flowcore/internal/logger"
)

// Link inspects value; if it names an existing filesystem entry, it
// creates a symbolic link to it inside destDir named
// "<prefix>_<safe-basename>". Non-path values, and paths that don't exist,
// are a silent no-op. Link never returns an error to the caller — linking
// failures are logged as warnings, never task failures, per the contract
// that input materialization must not itself fail a task.
func Link(log logger.Logger, value any, destDir, prefix string) {
	if log == nil {
		log = logger.Default
	}

	path, ok := value.(string)
	if !ok || path == "" {
		return
	}
	absSrc, err := filepath.Abs(path)
	if err != nil {
		log.Warnf("linker: resolve %q: %v", path, err)
		return
	}
	if !fileutil.FileExists(absSrc) {
		return
	}

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		log.Warnf("linker: resolve destination %q: %v", destDir, err)
		return
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		log.Warnf("linker: create destination %s: %v", absDest, err)
		return
	}

	if isWithin(absSrc, absDest) {
		log.Warnf("linker: refusing to link %s inside its own destination %s", absSrc, absDest)
		return
	}

	linkName := fmt.Sprintf("%s_%s", prefix, SafeName(filepath.Base(absSrc)))
	linkPath := filepath.Join(absDest, linkName)

	_ = os.Remove(linkPath)
	if err := os.Symlink(absSrc, linkPath); err != nil {
		log.Warnf("linker: create symlink %s -> %s: %v", linkPath, absSrc, err)
	}
}

// isWithin reports whether src is located inside dir, preventing a link
// whose source is inside its own destination directory (a self-referential
// chain).
func isWithin(src, dir string) bool {
	rel, err := filepath.Rel(dir, src)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "")
}
