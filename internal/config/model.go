package config

import (
	"encoding/json"
	"os"
	"strconv"
)

// DefaultPort is the hardcoded fallback for the remote compile service
// when neither a flag, a config file, nor the environment names one.
const DefaultPort = 61225

// PortEnvVar is the environment variable consulted for the service port.
const PortEnvVar = "FLATCOMP_SERVER_PORT"

// Model is the format-agnostic driver configuration. The CLI layers flag
// overrides on top of it after loading.
type Model struct {
	// Port of the remote compile service on localhost. Zero means
	// "resolve from the environment, then the hardcoded fallback".
	Port int

	// OutDir is the root of the flattened output tree.
	OutDir string

	// SourceMaps enables writing .js.map files next to the output.
	SourceMaps bool

	// SourceExtensions are compiled by the remote service, e.g. ".fs".
	SourceExtensions []string

	// ManifestExtensions mark project/manifest files: compiled and
	// rewritten for dependency discovery, but never written to output.
	ManifestExtensions []string

	// DefaultExtension is appended to extensionless relative specifiers.
	DefaultExtension string

	// BackendOptions is a free-form JSON object merged into every remote
	// compile request.
	BackendOptions json.RawMessage
}

// Default returns a model with the built-in defaults applied.
func Default() *Model {
	return &Model{
		OutDir:             ".",
		SourceExtensions:   []string{".fs", ".fsx"},
		ManifestExtensions: []string{".fsproj"},
		DefaultExtension:   ".js",
	}
}

// RecognizedExtensions returns every extension the driver treats as part of
// the compiled graph: sources, manifests, and the default one.
func (m *Model) RecognizedExtensions() []string {
	exts := make([]string, 0, len(m.SourceExtensions)+len(m.ManifestExtensions))
	exts = append(exts, m.SourceExtensions...)
	exts = append(exts, m.ManifestExtensions...)
	return exts
}

// IsManifest reports whether ext marks a project/manifest file.
func (m *Model) IsManifest(ext string) bool {
	for _, known := range m.ManifestExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// ResolvePort returns the effective service port: the configured one if
// set, otherwise the environment variable, otherwise the fallback.
func (m *Model) ResolvePort() int {
	if m.Port > 0 {
		return m.Port
	}
	if raw := os.Getenv(PortEnvVar); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil && port > 0 {
			return port
		}
	}
	return DefaultPort
}
