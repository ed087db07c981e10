package ast

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flatcomp/internal/diag"
)

// docWithImports builds a document whose source text contains one import
// per specifier and whose body records the matching offsets.
func docWithImports(t *testing.T, specs ...string) Document {
	t.Helper()

	var src strings.Builder
	var body []string
	for _, spec := range specs {
		line := fmt.Sprintf("import x from '%s';\n", spec)
		start := src.Len() + strings.Index(line, "'") + 1
		end := start + len(spec)
		src.WriteString(line)
		body = append(body, fmt.Sprintf(
			`{"type":"ImportDeclaration","source":{"value":%q,"start":%d,"end":%d}}`,
			spec, start, end))
	}

	doc := fmt.Sprintf(`{"type":"File","source":%q,"program":{"body":[%s]}}`,
		src.String(), strings.Join(body, ","))
	return Document(doc)
}

func TestImports_DeclarationOrder(t *testing.T) {
	t.Parallel()

	doc := docWithImports(t, "./b", "react", "../lib/c")
	refs := doc.Imports()

	require.Len(t, refs, 3)
	assert.Equal(t, "./b", refs[0].Specifier)
	assert.Equal(t, "react", refs[1].Specifier)
	assert.Equal(t, "../lib/c", refs[2].Specifier)
	assert.Equal(t, 0, refs[0].Index)
	assert.Equal(t, 2, refs[2].Index)
}

func TestImports_SkipsNodesWithoutSpecifier(t *testing.T) {
	t.Parallel()

	doc := Document(`{"type":"File","source":"","program":{"body":[
		{"type":"ExpressionStatement"},
		{"type":"ExportAllDeclaration","source":{"value":"./x","start":0,"end":3}}
	]}}`)
	refs := doc.Imports()

	require.Len(t, refs, 1)
	assert.Equal(t, "./x", refs[0].Specifier)
	assert.Equal(t, 1, refs[0].Index)
}

func TestSetSpecifierAndEmit(t *testing.T) {
	t.Parallel()

	doc := docWithImports(t, "./b", "./c")
	doc, err := doc.SetSpecifier(0, "../src/b")
	require.NoError(t, err)
	doc, err = doc.SetSpecifier(1, "../src/c")
	require.NoError(t, err)

	code := doc.Emit()
	assert.Contains(t, code, "import x from '../src/b';")
	assert.Contains(t, code, "import x from '../src/c';")
	assert.NotContains(t, code, "'./b'")
}

func TestEmit_LongerAndShorterReplacements(t *testing.T) {
	t.Parallel()

	// Rewrites change specifier length; right-to-left splicing must keep
	// every earlier offset valid.
	doc := docWithImports(t, "./a", "./quite/long/b", "./c")
	var err error
	doc, err = doc.SetSpecifier(0, "../pkg/alpha")
	require.NoError(t, err)
	doc, err = doc.SetSpecifier(1, "../p/b")
	require.NoError(t, err)

	code := doc.Emit()
	assert.Contains(t, code, "'../pkg/alpha'")
	assert.Contains(t, code, "'../p/b'")
	assert.Contains(t, code, "'./c'")
}

func TestSourceMap(t *testing.T) {
	t.Parallel()

	withMap := Document(`{"type":"File","source":"","program":{"body":[]},"map":{"version":3}}`)
	assert.JSONEq(t, `{"version":3}`, string(withMap.SourceMap()))

	withoutMap := Document(`{"type":"File","source":"","program":{"body":[]}}`)
	assert.Nil(t, withoutMap.SourceMap())
}

func TestLogs_ExtractedBySeverity(t *testing.T) {
	t.Parallel()

	doc := Document(`{"type":"File","source":"","program":{"body":[]},
		"logs":{"warning":["w1","w2"],"info":["i1"]}}`)
	logs := doc.Logs()

	assert.Equal(t, []string{"w1", "w2"}, logs.Entries(diag.SeverityWarning))
	assert.Equal(t, []string{"i1"}, logs.Entries(diag.SeverityInfo))
	assert.False(t, logs.Failed())
}
