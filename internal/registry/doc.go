// Package registry binds file extensions to compilation backends.
//
// The registry is the dispatch point of the backend strategy: the traversal
// engine asks it once per file which backend compiles that file, so the two
// backend variants stay independently testable and new source kinds can be
// added without changing traversal code. The registry is populated during
// application startup and validated against the loaded configuration before
// the first file is visited.
package registry
