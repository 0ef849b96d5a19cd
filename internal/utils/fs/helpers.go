// Package fs holds small filesystem helpers.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirs creates each directory (and parents) if missing.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %q: %w", dir, err)
		}
	}
	return nil
}

// ResolveBinary prefers a bundled binary under binDir, falling back to PATH
// resolution by bare name.
func ResolveBinary(binDir, name string) string {
	bundled := filepath.Join(binDir, name)
	if info, err := os.Stat(bundled); err == nil && !info.IsDir() {
		return bundled
	}
	return name
}

// Exists reports whether path exists as a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
