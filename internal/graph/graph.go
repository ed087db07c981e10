// Package graph records the module graph discovered during traversal:
// nodes are canonical absolute input paths, edges point from an importing
// file to the file it imports. The record is diagnostic — cycles are legal
// in the compiled graph and traversal breaks them itself — but it gives
// tests and debug logging a faithful picture of what was compiled.
package graph

import (
	"fmt"
	"sync"
)

type node struct {
	path    string
	imports map[string]*node
}

// Graph is the discovered module graph for one run.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// New creates an empty module graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode records a compiled file. Adding an existing node is a no-op.
func (g *Graph) AddNode(path string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[path]; ok {
		return
	}
	g.nodes[path] = &node{path: path, imports: make(map[string]*node)}
}

// AddEdge records that `from` imports `to`. Both endpoints must already be
// nodes. Self-edges are allowed: a file importing itself is a legal cycle.
func (g *Graph) AddEdge(from, to string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("importing node not found: %s", from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("imported node not found: %s", to)
	}
	fromNode.imports[to] = toNode
	return nil
}

// Len returns the number of recorded nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Nodes returns the paths of all recorded nodes, in no particular order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	return paths
}

// Imports returns the paths a node imports, in no particular order.
func (g *Graph) Imports(path string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[path]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", path)
	}
	imports := make([]string, 0, len(n.imports))
	for p := range n.imports {
		imports = append(imports, p)
	}
	return imports, nil
}

// HasCycle reports whether the recorded graph contains an import cycle and
// names one node involved in the first cycle found. Used only for debug
// reporting; a cycle never fails a run.
func (g *Graph) HasCycle() (string, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Depth-first search with the classic three-color scheme: permanent
	// nodes are known cycle-free, temporary nodes are on the current stack.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) (string, bool)
	visit = func(n *node) (string, bool) {
		if permanent[n.path] {
			return "", false
		}
		if temporary[n.path] {
			return n.path, true
		}
		temporary[n.path] = true
		for _, imported := range n.imports {
			if offender, found := visit(imported); found {
				return offender, true
			}
		}
		delete(temporary, n.path)
		permanent[n.path] = true
		return "", false
	}

	for _, n := range g.nodes {
		if !permanent[n.path] {
			if offender, found := visit(n); found {
				return offender, true
			}
		}
	}
	return "", false
}
