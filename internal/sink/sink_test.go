package sink

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flatcomp/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestWrite_CreatesDirectoriesOnDemand(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	s := New(outDir, false)

	target, err := s.Write(testContext(), "src/main", "const x = 1;", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "src", "main.js"), target)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "const x = 1;", string(content))
}

func TestWrite_SourceMapDisabledIgnoresMap(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	s := New(outDir, false)

	target, err := s.Write(testContext(), "src/main", "code", []byte(`{"version":3}`))
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "sourceMappingURL")
	assert.NoFileExists(t, target+".map")
}

func TestWrite_SourceMapEnabled(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	s := New(outDir, true)

	target, err := s.Write(testContext(), "src/main", "code", []byte(`{"version":3}`))
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "//# sourceMappingURL=main.js.map")

	mapContent, err := os.ReadFile(target + ".map")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3}`, string(mapContent))
}

func TestWrite_SourceMapEnabledButAbsent(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	s := New(outDir, true)

	target, err := s.Write(testContext(), "src/main", "code", nil)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "code", string(content))
	assert.NoFileExists(t, target+".map")
}

func TestWrite_OverwritesExistingFile(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	s := New(outDir, false)

	_, err := s.Write(testContext(), "src/main", "old", nil)
	require.NoError(t, err)
	target, err := s.Write(testContext(), "src/main", "new", nil)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}
