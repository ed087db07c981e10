package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

// Doc builds a compiled-document JSON payload for the given source text.
// Each specifier must occur in the source as a quoted string literal; its
// byte offsets are computed from the first unconsumed occurrence, so
// repeated specifiers resolve in order of appearance.
func Doc(t *testing.T, source string, specifiers ...string) []byte {
	t.Helper()

	doc := []byte(`{"type":"File","program":{"body":[]}}`)
	doc, err := sjson.SetBytes(doc, "source", source)
	require.NoError(t, err)

	searchFrom := 0
	for i, spec := range specifiers {
		idx := strings.Index(source[searchFrom:], `"`+spec+`"`)
		require.GreaterOrEqual(t, idx, 0, "specifier %q not found in source", spec)
		start := searchFrom + idx + 1 // skip the opening quote
		end := start + len(spec)
		searchFrom = end + 1

		prefix := fmt.Sprintf("program.body.%d", i)
		doc, err = sjson.SetBytes(doc, prefix+".type", "ImportDeclaration")
		require.NoError(t, err)
		doc, err = sjson.SetBytes(doc, prefix+".source.value", spec)
		require.NoError(t, err)
		doc, err = sjson.SetBytes(doc, prefix+".source.start", start)
		require.NoError(t, err)
		doc, err = sjson.SetBytes(doc, prefix+".source.end", end)
		require.NoError(t, err)
	}
	return doc
}

// DocWithLogs attaches a diagnostics bucket to an already built document.
func DocWithLogs(t *testing.T, doc []byte, severity string, messages ...string) []byte {
	t.Helper()
	out, err := sjson.SetBytes(doc, "logs."+severity, messages)
	require.NoError(t, err)
	return out
}
