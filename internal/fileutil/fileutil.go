// Package fileutil holds the file helpers shared by packaging, config and
// the CLI: scratch directories, atomic writes and path predicates.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePrefix reports a scratch prefix that could leave its root.
var ErrUnsafePrefix = errors.New("scratch prefix contains path separator or null byte")

// ScratchDir creates a fresh directory under root (the system temp dir when
// root is empty). The returned cleanup removes it with everything inside and
// is safe to call more than once.
func ScratchDir(root, prefix string) (dir string, cleanup func() error, err error) {
	if strings.ContainsAny(prefix, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsafePrefix, prefix)
	}
	if root != "" {
		if err := os.MkdirAll(root, 0o750); err != nil {
			return "", nil, fmt.Errorf("creating scratch root: %w", err)
		}
	}

	dir, err = os.MkdirTemp(root, prefix+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	return dir, func() error { return os.RemoveAll(dir) }, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// HasExtension reports whether path ends with one of exts, case-insensitively.
// Extensions include the leading dot.
func HasExtension(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "work" -> false (name)
//   - "./work.yaml" -> true (relative path)
//   - "/etc/mdcards/work.yaml" -> true (absolute)
//   - "sub/dir" -> true (contains separator)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

