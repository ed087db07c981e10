// Package compiler orchestrates the compile run: it visits the entry file
// and everything it transitively imports exactly once, compiles each file
// through the backend registry, rewrites import specifiers against the
// flattened output namespace, and hands the result to the persistence sink.
package compiler

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/vk/flatcomp/internal/ast"
	"github.com/vk/flatcomp/internal/config"
	"github.com/vk/flatcomp/internal/ctxlog"
	"github.com/vk/flatcomp/internal/diag"
	"github.com/vk/flatcomp/internal/graph"
	"github.com/vk/flatcomp/internal/namespace"
	"github.com/vk/flatcomp/internal/registry"
	"github.com/vk/flatcomp/internal/resolve"
	"github.com/vk/flatcomp/internal/sink"
)

// Session owns the mutable state of one compile run: the visited set, the
// output namespace, the aggregated diagnostics, and the discovered module
// graph. A session is created per run and discarded afterward; independent
// runs never share state.
//
// Traversal is strictly single-goroutine. Output-path allocation order
// depends on visitation order being reproducible, and the collision-suffix
// assignment is order-sensitive, so parallelizing the traversal would make
// output nondeterministic.
type Session struct {
	model    *config.Model
	registry *registry.Registry
	resolver *resolve.Resolver
	alloc    *namespace.Allocator
	sink     *sink.Sink

	visited map[string]bool
	logs    *diag.Logs
	graph   *graph.Graph
}

// NewSession creates a fresh session for one run.
func NewSession(model *config.Model, reg *registry.Registry, snk *sink.Sink) *Session {
	return &Session{
		model:    model,
		registry: reg,
		resolver: resolve.New(model.RecognizedExtensions(), model.DefaultExtension),
		alloc:    namespace.New(model.RecognizedExtensions()),
		sink:     snk,
		visited:  make(map[string]bool),
		logs:     diag.NewLogs(),
		graph:    graph.New(),
	}
}

// Run canonicalizes the entry path and traverses the whole module graph
// from it. A returned error is fatal; per-file problems land in Logs.
func (s *Session) Run(ctx context.Context, entry string) error {
	logger := ctxlog.FromContext(ctx)

	canonical, err := s.canonicalize(entry)
	if err != nil {
		return err
	}
	logger.Debug("Traversal starting.", "entry", canonical)

	if err := s.visit(ctx, canonical); err != nil {
		return err
	}

	logger.Debug("Traversal finished.", "files_visited", len(s.visited), "files_allocated", s.alloc.Len())
	if offender, found := s.graph.HasCycle(); found {
		logger.Debug("Module graph contains an import cycle.", "involving", offender)
	}
	return nil
}

// visit processes one node of the module graph. The path is marked visited
// before compilation is requested, so a cyclic import back to this node
// short-circuits instead of recursing forever; a second visit of any path
// is a no-op.
func (s *Session) visit(ctx context.Context, absPath string) error {
	if s.visited[absPath] {
		return nil
	}
	s.visited[absPath] = true
	s.graph.AddNode(absPath)

	backend, err := s.registry.For(absPath)
	if err != nil {
		return err
	}
	result, err := backend.Compile(ctx, absPath)
	if err != nil {
		return err
	}
	s.logs.Merge(result.Logs)
	if result.Doc == nil {
		// No AST: nothing to rewrite, no output, no dependencies to follow.
		return nil
	}

	doc, deps, err := s.rewriteImports(absPath, result.Doc)
	if err != nil {
		return err
	}

	// Manifest files drive dependency discovery but produce no output.
	if !s.model.IsManifest(path.Ext(absPath)) {
		outPath := s.alloc.Allocate(absPath)
		if _, err := s.sink.Write(ctx, outPath, doc.Emit(), doc.SourceMap()); err != nil {
			return err
		}
	}

	// Depth-first, declaration order. This only determines dedup-suffix
	// assignment, not correctness.
	for _, dep := range deps {
		if err := s.visit(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

// rewriteImports resolves every relative specifier in the document,
// allocates its output slot, and replaces the specifier with the path
// relative to an output file's directory (one level below the flat root,
// hence the single "../"). External specifiers pass through untouched.
// The returned deps preserve declaration order.
func (s *Session) rewriteImports(absPath string, doc ast.Document) (ast.Document, []string, error) {
	dir := path.Dir(absPath)

	var deps []string
	for _, ref := range doc.Imports() {
		if !resolve.IsRelative(ref.Specifier) {
			continue
		}
		target := s.resolver.Resolve(dir, ref.Specifier)
		out := s.alloc.Allocate(target)

		var err error
		doc, err = doc.SetSpecifier(ref.Index, "../"+out)
		if err != nil {
			return nil, nil, err
		}

		s.graph.AddNode(target)
		if err := s.graph.AddEdge(absPath, target); err != nil {
			return nil, nil, err
		}
		deps = append(deps, target)
	}
	return doc, deps, nil
}

// canonicalize turns the entry argument into the same canonical absolute
// form the resolver produces, so the visited set and pathMap key
// consistently.
func (s *Session) canonicalize(entry string) (string, error) {
	abs, err := filepath.Abs(entry)
	if err != nil {
		return "", fmt.Errorf("failed to resolve entry path %s: %w", entry, err)
	}
	canonical := filepath.ToSlash(abs)
	if !s.resolver.Recognized(canonical) {
		canonical += s.model.DefaultExtension
	}
	return canonical, nil
}

// Logs returns the diagnostics aggregated across the whole run.
func (s *Session) Logs() *diag.Logs {
	return s.logs
}

// Graph returns the module graph discovered during the run.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// Allocator exposes the output namespace, primarily for tests and for
// inspecting where a given input ended up.
func (s *Session) Allocator() *namespace.Allocator {
	return s.alloc
}

// Visited returns every path the run has processed, in no particular order.
func (s *Session) Visited() []string {
	paths := make([]string, 0, len(s.visited))
	for p := range s.visited {
		paths = append(paths, p)
	}
	return paths
}
