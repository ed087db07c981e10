package hclconf

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vk/flatcomp/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_NoPathsYieldsDefaults(t *testing.T) {
	t.Parallel()

	model, err := NewLoader().Load(testContext())
	require.NoError(t, err)

	assert.Equal(t, 0, model.Port)
	assert.Equal(t, ".", model.OutDir)
	assert.False(t, model.SourceMaps)
	assert.Equal(t, []string{".fs", ".fsx"}, model.SourceExtensions)
	assert.Equal(t, []string{".fsproj"}, model.ManifestExtensions)
	assert.Equal(t, ".js", model.DefaultExtension)
	assert.Nil(t, model.BackendOptions)
}

func TestLoad_CompilerBlockOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "flatcomp.hcl", `
		compiler {
			port        = 7010
			out_dir     = "build"
			source_maps = true
			source_extensions   = [".src"]
			manifest_extensions = [".proj"]
		}
	`)

	model, err := NewLoader().Load(testContext(), path)
	require.NoError(t, err)

	assert.Equal(t, 7010, model.Port)
	assert.Equal(t, "build", model.OutDir)
	assert.True(t, model.SourceMaps)
	assert.Equal(t, []string{".src"}, model.SourceExtensions)
	assert.Equal(t, []string{".proj"}, model.ManifestExtensions)
	assert.Equal(t, ".js", model.DefaultExtension)
}

func TestLoad_OptionsBlockBecomesBackendOptionsJSON(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "flatcomp.hcl", `
		compiler {
			options {
				define  = ["DEBUG"]
				typedArrays = false
			}
		}
	`)

	model, err := NewLoader().Load(testContext(), path)
	require.NoError(t, err)
	require.NotNil(t, model.BackendOptions)

	opts := gjson.ParseBytes(model.BackendOptions)
	assert.Equal(t, "DEBUG", opts.Get("define.0").String())
	assert.False(t, opts.Get("typedArrays").Bool())
}

func TestLoad_DirectoryDiscoversAllFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Files merge in sorted order, so b.hcl overrides a.hcl.
	writeConfig(t, dir, "a.hcl", `compiler { port = 1000 }`)
	writeConfig(t, dir, "b.hcl", `compiler { port = 2000 out_dir = "out" }`)

	model, err := NewLoader().Load(testContext(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2000, model.Port)
	assert.Equal(t, "out", model.OutDir)
}

func TestLoad_InvalidSyntaxIsAnError(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "broken.hcl", `compiler { port = `)

	_, err := NewLoader().Load(testContext(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_MissingPathIsAnError(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(testContext(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path not accessible")
}
