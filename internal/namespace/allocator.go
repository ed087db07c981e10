// Package namespace maps absolute input paths to a flat, collision-free
// output layout.
//
// The output namespace is deliberately one directory level deep: nested
// source hierarchies across independently-rooted projects are not
// guaranteed collision-free, so flattening plus numeric disambiguation is
// the simplest scheme that preserves uniqueness without a second pass.
// The flattening policy lives entirely behind Allocator so it can be
// replaced without touching traversal or rewriting.
package namespace

import (
	"path"
	"strconv"
	"strings"
)

// Allocator assigns each absolute input path a unique output path of the
// form {parentDirName}/{baseName}. Assignments are first-come-first-served
// and stable for the lifetime of one run, so output is deterministic given
// traversal order. Not safe for concurrent use; the traversal is
// single-goroutine by design.
type Allocator struct {
	stripExts []string // recognized source extensions stripped from the base name
	allocated map[string]bool
	pathMap   map[string]string
}

// New creates an empty allocator. stripExts lists the source extensions
// removed from output base names, in addition to a trailing ".js".
func New(stripExts []string) *Allocator {
	return &Allocator{
		stripExts: stripExts,
		allocated: make(map[string]bool),
		pathMap:   make(map[string]string),
	}
}

// Allocate returns the output path for inputPath, claiming a new slot on
// first use. Repeated calls with the same input return the same output.
// Distinct inputs never share an output: on a name collision an increasing
// integer suffix is appended until an unclaimed name is found.
func (a *Allocator) Allocate(inputPath string) string {
	if out, ok := a.pathMap[inputPath]; ok {
		return out
	}

	candidate := path.Base(path.Dir(inputPath)) + "/" + a.baseName(inputPath)
	out := candidate
	for i := 1; a.allocated[out]; i++ {
		out = candidate + strconv.Itoa(i)
	}

	a.allocated[out] = true
	a.pathMap[inputPath] = out
	return out
}

// Lookup returns the already-assigned output path for inputPath, if any.
func (a *Allocator) Lookup(inputPath string) (string, bool) {
	out, ok := a.pathMap[inputPath]
	return out, ok
}

// Len returns the number of assigned output paths.
func (a *Allocator) Len() int {
	return len(a.pathMap)
}

// baseName strips a trailing ".js" and any recognized source extension
// from the input file name.
func (a *Allocator) baseName(inputPath string) string {
	name := strings.TrimSuffix(path.Base(inputPath), ".js")
	for _, ext := range a.stripExts {
		if trimmed := strings.TrimSuffix(name, ext); trimmed != name && trimmed != "" {
			return trimmed
		}
	}
	return name
}
