// Package ast defines the compiled representation exchanged between the
// backends and the import rewriter: a JSON document with a "File" root, the
// emitted source text, and a program body whose import-carrying declarations
// record their specifier offsets into that text.
//
// The document is kept as raw JSON on purpose. The remote service owns the
// full node vocabulary; the driver only ever reads and rewrites module
// specifiers, so it navigates the document with gjson and mutates it with
// sjson instead of mirroring the whole schema in Go types.
package ast

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vk/flatcomp/internal/diag"
)

// Document is a compiled file: a JSON object of shape
//
//	{
//	  "type": "File",
//	  "source": "<code>",
//	  "program": { "body": [ ... ] },
//	  "map": { ... },        // optional source map
//	  "logs": { "warning": [ ... ] } // optional per-file diagnostics
//	}
//
// Body entries that reference another module (imports, named re-exports,
// export-all declarations) carry a "source" object with the raw specifier
// under "value" and its byte offsets into the top-level source text under
// "start"/"end".
type Document []byte

// ImportRef is one module reference discovered in a document's body.
type ImportRef struct {
	Index     int    // position within program.body
	Specifier string // raw specifier as written in the source
	Start     int    // byte offset of the specifier text (without quotes)
	End       int
}

// Imports enumerates every top-level declaration carrying a module
// specifier, in declaration order.
func (d Document) Imports() []ImportRef {
	var refs []ImportRef
	body := gjson.GetBytes(d, "program.body").Array()
	for i, node := range body {
		src := node.Get("source.value")
		if !src.Exists() {
			continue
		}
		refs = append(refs, ImportRef{
			Index:     i,
			Specifier: src.String(),
			Start:     int(node.Get("source.start").Int()),
			End:       int(node.Get("source.end").Int()),
		})
	}
	return refs
}

// SetSpecifier replaces the specifier of the body entry at index, returning
// the mutated document.
func (d Document) SetSpecifier(index int, spec string) (Document, error) {
	out, err := sjson.SetBytes(d, fmt.Sprintf("program.body.%d.source.value", index), spec)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite specifier at body index %d: %w", index, err)
	}
	return Document(out), nil
}

// Emit renders the output code: the document's source text with every
// module specifier replaced by its current (possibly rewritten) value.
// Splicing runs right-to-left so earlier offsets stay valid. References
// without usable offsets are left as they appear in the source text.
func (d Document) Emit() string {
	code := []byte(gjson.GetBytes(d, "source").String())
	refs := d.Imports()
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		if ref.Start < 0 || ref.End <= ref.Start || ref.End > len(code) {
			continue
		}
		spliced := make([]byte, 0, len(code)+len(ref.Specifier))
		spliced = append(spliced, code[:ref.Start]...)
		spliced = append(spliced, ref.Specifier...)
		spliced = append(spliced, code[ref.End:]...)
		code = spliced
	}
	return string(code)
}

// SourceMap returns the raw source map JSON, or nil when the document
// carries none.
func (d Document) SourceMap() []byte {
	m := gjson.GetBytes(d, "map")
	if !m.Exists() {
		return nil
	}
	return []byte(m.Raw)
}

// Logs extracts the per-file diagnostics reported alongside the document,
// keyed by severity label, preserving the document's order.
func (d Document) Logs() *diag.Logs {
	logs := diag.NewLogs()
	gjson.GetBytes(d, "logs").ForEach(func(severity, lines gjson.Result) bool {
		for _, line := range lines.Array() {
			logs.Add(severity.String(), line.String())
		}
		return true
	})
	return logs
}
