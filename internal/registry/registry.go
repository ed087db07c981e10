package registry

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/vk/flatcomp/internal/backend"
)

// Registry maps file extensions to the compilation backend that handles
// them, for a single application instance. Dispatch happens once per file
// during traversal; adding a new source kind means registering a backend,
// not touching the traversal engine.
type Registry struct {
	backends map[string]backend.Backend
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{backends: make(map[string]backend.Backend)}
}

// Register binds an extension (with leading dot) to a backend. Registering
// the same extension twice is a programmer error.
func (r *Registry) Register(ext string, b backend.Backend) {
	if _, exists := r.backends[ext]; exists {
		panic(fmt.Sprintf("backend for extension %q already registered", ext))
	}
	slog.Debug("Registering compilation backend.", "extension", ext)
	r.backends[ext] = b
}

// For selects the backend for a file by its extension.
func (r *Registry) For(path string) (backend.Backend, error) {
	ext := filepath.Ext(path)
	b, ok := r.backends[ext]
	if !ok {
		return nil, fmt.Errorf("no backend registered for extension %q (file %s)", ext, path)
	}
	return b, nil
}

// Validate ensures every extension the config declares compilable has a
// backend. A mismatch between config and registered backends is a startup
// error, caught before any traversal begins.
func (r *Registry) Validate(extensions []string) error {
	for _, ext := range extensions {
		if _, ok := r.backends[ext]; !ok {
			return fmt.Errorf("extension %q is configured but has no registered backend", ext)
		}
	}
	return nil
}
