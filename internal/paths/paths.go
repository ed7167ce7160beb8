// Package paths knows where botlint keeps its files and how to turn
// analyzed file paths into stable, workspace-relative names.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DirName is the per-workspace state directory.
	DirName = ".botlint"

	configFile    = "config.json"
	historyDBFile = "history.db"
	allowlistFile = "allowlist.toml"
	logsDir       = "logs"
	serverLogFile = "server.log"
)

// ConfigDir returns <root>/.botlint.
func ConfigDir(root string) string {
	return filepath.Join(root, DirName)
}

// ConfigPath returns <root>/.botlint/config.json.
func ConfigPath(root string) string {
	return filepath.Join(ConfigDir(root), configFile)
}

// HistoryDBPath returns <root>/.botlint/history.db.
func HistoryDBPath(root string) string {
	return filepath.Join(ConfigDir(root), historyDBFile)
}

// DefaultAllowlistPath returns <root>/.botlint/allowlist.toml.
func DefaultAllowlistPath(root string) string {
	return filepath.Join(ConfigDir(root), allowlistFile)
}

// ServerLogPath returns <root>/.botlint/logs/server.log.
func ServerLogPath(root string) string {
	return filepath.Join(ConfigDir(root), logsDir, serverLogFile)
}

// EnsureDir creates <root>/.botlint if needed and returns its path.
func EnsureDir(root string) (string, error) {
	dir := ConfigDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// Resolve makes p absolute against root unless it already is.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// CanonicalizePath converts a path to a root-relative path with forward
// slashes. Symlinks are resolved when the target exists.
func CanonicalizePath(path string, root string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absPath
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	rootResolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		rootResolved = absRoot
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRoot reports whether path lies inside root.
func IsWithinRoot(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// SourceName is the name recorded for an analyzed file: root-relative
// when the file is inside root, otherwise the cleaned path as given.
// "-" and "" name standard input.
func SourceName(path string, root string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	if IsWithinRoot(path, root) {
		if canonical, err := CanonicalizePath(path, root); err == nil {
			return canonical
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
