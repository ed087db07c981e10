// Package resolve turns raw import specifiers into canonical absolute
// paths. The canonical path is the traversal and deduplication key used
// everywhere else in the driver.
package resolve

import (
	"path"
	"path/filepath"
	"strings"
)

// Resolver normalizes relative import specifiers against a file's
// directory. Its extension lists come from the loaded config model.
type Resolver struct {
	recognized []string // source + manifest extensions, e.g. [".fs", ".fsx", ".fsproj"]
	defaultExt string   // appended when a specifier carries no recognized extension
}

// New creates a resolver for the given recognized extensions.
func New(recognized []string, defaultExt string) *Resolver {
	return &Resolver{recognized: recognized, defaultExt: defaultExt}
}

// IsRelative reports whether a specifier names a file inside the compiled
// graph. Anything else refers to an external/library module and is never
// rewritten or traversed.
func IsRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// Resolve joins a relative specifier with baseDir and canonicalizes it:
// platform separators become forward slashes, and the default extension is
// appended when the specifier has neither a recognized source extension nor
// the default one. Non-relative specifiers are returned unchanged.
func (r *Resolver) Resolve(baseDir, spec string) string {
	if !IsRelative(spec) {
		return spec
	}
	joined := filepath.ToSlash(filepath.Join(baseDir, spec))
	if !r.Recognized(joined) {
		joined += r.defaultExt
	}
	return joined
}

// Recognized reports whether p carries an extension the driver knows how
// to compile or emit.
func (r *Resolver) Recognized(p string) bool {
	ext := path.Ext(p)
	if ext == r.defaultExt {
		return true
	}
	for _, known := range r.recognized {
		if ext == known {
			return true
		}
	}
	return false
}
