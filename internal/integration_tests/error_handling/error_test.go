package integration_tests

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/vk/flatcomp/internal/testutil"
)

func TestErrorHandling_SyntaxErrorDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"src/main.js": `import { broken } from "./bad";
import { fine } from "./good";
export const out = fine;
`,
		"src/bad.js": `import from from from;;; {
`,
		"src/good.js": `export const fine = "ok";
`,
	}

	// --- Act ---
	result := testutil.RunCompile(t, files, testutil.CompileOptions{Entry: "src/main.js"})

	// --- Assert ---
	require.Error(t, result.Err, "a recorded syntax error must fail the run")
	assert.Contains(t, result.Err.Error(), "finished with 1 error(s)")
	assert.Contains(t, result.LogOutput, "error BABEL: invalid syntax")
	assert.Contains(t, result.LogOutput, "bad.js", "the diagnostic should name the offending file")
	assert.Contains(t, result.LogOutput, "Compilation failed.")

	// The sibling and the entry itself still produce output.
	outputs := testutil.OutputFiles(t, result)
	assert.ElementsMatch(t, []string{"src/main.js", "src/good.js"}, outputs)
}

func TestErrorHandling_ServiceReportedErrorIsFatal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"src/main.fs": "let answer = 42\n",
	}
	service := testutil.ServiceFunc(func(path string, body []byte) []byte {
		payload, _ := sjson.SetBytes([]byte(`{}`), "error", "Unexpected token at line 3")
		return payload
	})

	// --- Act ---
	result := testutil.RunCompile(t, files, testutil.CompileOptions{
		Entry:   "src/main.fs",
		Service: service,
	})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "compilation aborted")
	assert.Contains(t, result.Err.Error(), "Unexpected token at line 3")
	assert.Empty(t, testutil.OutputFiles(t, result))
}

func TestErrorHandling_ConnectionRefusedSuggestsDaemon(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Reserve a local port and close it again so the connection is refused.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	files := map[string]string{
		"src/main.fs": "let answer = 42\n",
	}

	// --- Act ---
	result := testutil.RunCompile(t, files, testutil.CompileOptions{
		Entry: "src/main.fs",
		Port:  port,
	})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "cannot reach the compile service")
	assert.Contains(t, result.Err.Error(), "is the compiler daemon running")
}
