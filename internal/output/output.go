// Package output persists assembled artifacts.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"sitepack/internal/bundle"
	"sitepack/internal/log"
)

// Summary reports one completed write.
type Summary struct {
	// Path is the destination the artifact was written to.
	Path string
	// Bytes is the exact artifact size.
	Bytes int
	// SizeKB is Bytes rounded to the nearest kilobyte.
	SizeKB int
	// EventCount is the number of embedded event records.
	EventCount int
}

// Write persists the artifact at path, creating the destination directory if
// absent and overwriting any existing file. The write goes through a temp
// file in the same directory followed by a rename, so an interrupted run
// never leaves a truncated artifact behind.
func Write(path string, art *bundle.Artifact) (Summary, error) {
	if path == "" {
		return Summary{}, fmt.Errorf("output: destination path is empty")
	}
	if art == nil {
		return Summary{}, fmt.Errorf("output: artifact is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("output: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".sitepack-artifact-*.tmp")
	if err != nil {
		return Summary{}, fmt.Errorf("output: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(art.HTML); err != nil {
		tmp.Close()
		return Summary{}, fmt.Errorf("output: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return Summary{}, fmt.Errorf("output: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Summary{}, fmt.Errorf("output: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return Summary{}, fmt.Errorf("output: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Summary{}, fmt.Errorf("output: rename: %w", err)
	}

	sum := Summary{
		Path:       path,
		Bytes:      len(art.HTML),
		SizeKB:     (len(art.HTML) + 512) / 1024,
		EventCount: art.EventCount,
	}

	log.Info("artifact written",
		"path", sum.Path,
		"size_kb", sum.SizeKB,
		"events", sum.EventCount,
	)

	return sum, nil
}
