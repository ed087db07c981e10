// Package sink persists transformed output into the flattened output tree.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/flatcomp/internal/ctxlog"
)

// Sink writes compiled files under a single output root, creating
// directories on demand. Directory creation is idempotent; nothing here is
// exercised concurrently by the single-goroutine traversal.
type Sink struct {
	outDir     string
	sourceMaps bool
}

// New creates a sink rooted at outDir. When sourceMaps is set, a .js.map
// file and a sourceMappingURL footer are written for documents that carry
// a map.
func New(outDir string, sourceMaps bool) *Sink {
	return &Sink{outDir: outDir, sourceMaps: sourceMaps}
}

// Write persists the code for one allocated output path and returns the
// full path of the written .js file.
func (s *Sink) Write(ctx context.Context, outPath, code string, srcMap []byte) (string, error) {
	logger := ctxlog.FromContext(ctx)

	target := filepath.Join(s.outDir, outPath+".js")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory for %s: %w", target, err)
	}

	if s.sourceMaps && srcMap != nil {
		mapName := filepath.Base(target) + ".map"
		code += "\n//# sourceMappingURL=" + mapName
		if err := os.WriteFile(target+".map", srcMap, 0644); err != nil {
			return "", fmt.Errorf("failed to write source map for %s: %w", target, err)
		}
	}

	if err := os.WriteFile(target, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("failed to write output file %s: %w", target, err)
	}

	logger.Debug("Wrote output file.", "path", target, "bytes", len(code))
	return target, nil
}
