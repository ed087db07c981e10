package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/vk/flatcomp/internal/ast"
	"github.com/vk/flatcomp/internal/ctxlog"
	"github.com/vk/flatcomp/internal/diag"
)

// Native parses a JavaScript file directly into an AST document. Per-file
// problems are recoverable: a missing file or a syntax error yields no AST
// but never aborts the run, so sibling files still produce output.
type Native struct{}

// NewNative creates the native JavaScript backend.
func NewNative() *Native {
	return &Native{}
}

// docFile and friends describe the marshaled document shape; the remote
// service produces the same shape, so the rewriter treats both uniformly.
type docFile struct {
	Type    string     `json:"type"`
	Source  string     `json:"source"`
	Program docProgram `json:"program"`
}

type docProgram struct {
	Body []docNode `json:"body"`
}

type docNode struct {
	Type   string     `json:"type"`
	Source *docSource `json:"source,omitempty"`
}

type docSource struct {
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Compile reads and parses absPath. A missing file is tolerated with an
// informational diagnostic; a parse failure is recorded as an
// error-severity log entry. Both yield a nil Doc.
func (n *Native) Compile(ctx context.Context, absPath string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logs := diag.NewLogs()

	content, err := os.ReadFile(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Native file does not exist, skipping node.", "path", absPath)
		logs.Add(diag.SeverityInfo, fmt.Sprintf("Skipping missing file: %s", absPath))
		return &Result{Logs: logs}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", absPath, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parser failed on %s: %w", absPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		logs.Add(diag.SeverityError,
			fmt.Sprintf("%s(1,1): error BABEL: invalid syntax", absPath))
		logger.Debug("Native parse failed, node contributes no output.", "path", absPath)
		return &Result{Logs: logs}, nil
	}

	file := docFile{
		Type:    "File",
		Source:  string(content),
		Program: docProgram{Body: walkTopLevel(root, content)},
	}
	payload, err := json.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode AST for %s: %w", absPath, err)
	}

	doc := ast.Document(payload)
	logger.Debug("Parsed native file.", "path", absPath, "imports", len(doc.Imports()))
	return &Result{Doc: doc, Logs: logs}, nil
}

// walkTopLevel maps the parse tree's top-level statements into body nodes,
// attaching specifier offsets for declarations that reference a module.
func walkTopLevel(root *sitter.Node, content []byte) []docNode {
	body := make([]docNode, 0, int(root.NamedChildCount()))
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			body = append(body, docNode{
				Type:   "ImportDeclaration",
				Source: specifierOf(child, content),
			})
		case "export_statement":
			nodeType := "ExportNamedDeclaration"
			if hasStarChild(child) {
				nodeType = "ExportAllDeclaration"
			}
			body = append(body, docNode{
				Type:   nodeType,
				Source: specifierOf(child, content),
			})
		default:
			body = append(body, docNode{Type: child.Type()})
		}
	}
	return body
}

// specifierOf finds the module string of an import/export statement and
// records the byte offsets of its inner text, without the quotes.
func specifierOf(stmt *sitter.Node, content []byte) *docSource {
	for i := 0; i < int(stmt.ChildCount()); i++ {
		child := stmt.Child(i)
		if child.Type() != "string" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			frag := child.Child(j)
			if frag.Type() == "string_fragment" {
				return &docSource{
					Value: string(content[frag.StartByte():frag.EndByte()]),
					Start: int(frag.StartByte()),
					End:   int(frag.EndByte()),
				}
			}
		}
		// Empty specifier: the string has no fragment child.
		return &docSource{
			Value: "",
			Start: int(child.StartByte()) + 1,
			End:   int(child.EndByte()) - 1,
		}
	}
	return nil
}

func hasStarChild(stmt *sitter.Node) bool {
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if stmt.Child(i).Type() == "*" {
			return true
		}
	}
	return false
}
