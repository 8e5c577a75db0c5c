// Package media resolves logical asset references to files on disk and
// probes their video characteristics. Exporters and the render
// orchestrator depend on it through the Locator and Prober interfaces.
package media

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a reference cannot be resolved to a file
// or a file cannot be probed.
var ErrNotFound = errors.New("media not found")

// Locator resolves a logical asset reference to an absolute path.
type Locator interface {
	Locate(ref string) (string, error)
}

// FileLocator resolves references against the local filesystem.
// Absolute paths are returned as-is when they exist; bare filenames are
// searched across SearchDirs; references carrying a non-file scheme
// (blob:, mem:, http:, ...) are transient and never searched.
type FileLocator struct {
	SearchDirs []string
}

// NewFileLocator builds a locator over the given media directories.
func NewFileLocator(searchDirs []string) *FileLocator {
	return &FileLocator{SearchDirs: searchDirs}
}

func (l *FileLocator) Locate(ref string) (string, error) {
	if ref == "" {
		return "", ErrNotFound
	}
	if hasScheme(ref) {
		return "", ErrNotFound
	}

	if filepath.IsAbs(ref) {
		if fileExists(ref) {
			return ref, nil
		}
		// Fall through: the basename may live in a search dir after the
		// project moved between machines.
	}

	base := filepath.Base(ref)
	for _, dir := range l.SearchDirs {
		candidate := filepath.Join(dir, base)
		if fileExists(candidate) {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", ErrNotFound
			}
			return abs, nil
		}
	}
	return "", ErrNotFound
}

// hasScheme reports whether ref looks like scheme:rest. Windows drive
// letters (C:\...) are not schemes.
func hasScheme(ref string) bool {
	i := strings.Index(ref, ":")
	if i <= 0 {
		return false
	}
	if i == 1 && isDriveLetter(ref[0]) {
		return false
	}
	for _, r := range ref[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

func isDriveLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
