// Package backend turns a single file into its compiled AST document.
// Two variants exist: Remote delegates to the compile service over
// localhost, Native parses JavaScript directly. Which variant handles a
// file is decided once per file by extension, via the registry.
package backend

import (
	"context"

	"github.com/vk/flatcomp/internal/ast"
	"github.com/vk/flatcomp/internal/diag"
)

// Result is the outcome of compiling one file. Doc is nil when the file
// produced no AST (missing native file, native parse failure); the
// traversal then neither rewrites nor persists nor recurses for that node.
type Result struct {
	Doc  ast.Document
	Logs *diag.Logs
}

// Backend compiles one file identified by its canonical absolute path.
// A returned error is fatal for the whole run; recoverable per-file
// problems are reported through Result.Logs instead.
type Backend interface {
	Compile(ctx context.Context, absPath string) (*Result, error)
}
