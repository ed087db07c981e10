package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestResolver() *Resolver {
	return New([]string{".fs", ".fsx", ".fsproj"}, ".js")
}

func TestIsRelative(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRelative("./b"))
	assert.True(t, IsRelative("../lib/util"))
	assert.True(t, IsRelative("."))
	assert.False(t, IsRelative("react"))
	assert.False(t, IsRelative("@scope/pkg"))
	assert.False(t, IsRelative("fs/promises"))
}

func TestResolve_ExternalSpecifierPassesThrough(t *testing.T) {
	t.Parallel()

	r := newTestResolver()
	assert.Equal(t, "react", r.Resolve("/proj/src", "react"))
	assert.Equal(t, "@scope/pkg", r.Resolve("/proj/src", "@scope/pkg"))
}

func TestResolve_JoinsAndDefaultsExtension(t *testing.T) {
	t.Parallel()

	r := newTestResolver()
	assert.Equal(t, "/proj/src/b.js", r.Resolve("/proj/src", "./b"))
	assert.Equal(t, "/proj/lib/util.js", r.Resolve("/proj/src", "../lib/util"))
}

func TestResolve_RecognizedExtensionKept(t *testing.T) {
	t.Parallel()

	r := newTestResolver()
	assert.Equal(t, "/proj/src/b.fs", r.Resolve("/proj/src", "./b.fs"))
	assert.Equal(t, "/proj/src/b.js", r.Resolve("/proj/src", "./b.js"))
	assert.Equal(t, "/proj/app.fsproj", r.Resolve("/proj/src", "../app.fsproj"))
}

func TestResolve_UnrecognizedExtensionGetsDefaultAppended(t *testing.T) {
	t.Parallel()

	// A dot inside the name is not a recognized extension, so the default
	// extension is still appended.
	r := newTestResolver()
	assert.Equal(t, "/proj/src/b.config.js", r.Resolve("/proj/src", "./b.config"))
}
