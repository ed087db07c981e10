// Package hclconf is the HCL implementation of config.Loader.
package hclconf

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/flatcomp/internal/config"
	"github.com/vk/flatcomp/internal/ctxlog"
	"github.com/vk/flatcomp/internal/fsutil"
)

// Loader loads driver configuration from .hcl files.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes the top-level blocks of a config file.
type fileRoot struct {
	Compiler *compilerBlock `hcl:"compiler,block"`
	Remain   hcl.Body       `hcl:",remain"`
}

// compilerBlock mirrors the `compiler {}` block. Every field is optional;
// absent fields keep their defaults or the value from an earlier file.
type compilerBlock struct {
	Port               *int      `hcl:"port,optional"`
	OutDir             *string   `hcl:"out_dir,optional"`
	SourceMaps         *bool     `hcl:"source_maps,optional"`
	SourceExtensions   *[]string `hcl:"source_extensions,optional"`
	ManifestExtensions *[]string `hcl:"manifest_extensions,optional"`
	DefaultExtension   *string   `hcl:"default_extension,optional"`
	Options            *optionsBlock `hcl:"options,block"`
}

// optionsBlock carries free-form attributes forwarded to the remote
// compile service; the driver never interprets them.
type optionsBlock struct {
	Remain hcl.Body `hcl:",remain"`
}

// Load parses every .hcl file reachable from the given paths (files or
// directories) and merges them, later files overriding earlier ones, on
// top of the built-in defaults.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL config loader started.", "path_count", len(paths))

	model := config.Default()
	options := make(map[string]cty.Value)

	files, err := l.findConfigFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered config files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse config file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode config file %s: %w", file, diags)
		}
		if root.Compiler == nil {
			continue
		}
		if err := applyBlock(model, options, root.Compiler); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", file, err)
		}
	}

	if len(options) > 0 {
		raw, err := ctyjson.Marshal(cty.ObjectVal(options), cty.Object(typesOf(options)))
		if err != nil {
			return nil, fmt.Errorf("failed to encode backend options: %w", err)
		}
		model.BackendOptions = raw
	}

	logger.Debug("Configuration merged into unified model.",
		"port", model.Port, "out_dir", model.OutDir, "source_maps", model.SourceMaps)
	return model, nil
}

// applyBlock folds one compiler block into the model.
func applyBlock(model *config.Model, options map[string]cty.Value, block *compilerBlock) error {
	if block.Port != nil {
		model.Port = *block.Port
	}
	if block.OutDir != nil {
		model.OutDir = *block.OutDir
	}
	if block.SourceMaps != nil {
		model.SourceMaps = *block.SourceMaps
	}
	if block.SourceExtensions != nil {
		model.SourceExtensions = *block.SourceExtensions
	}
	if block.ManifestExtensions != nil {
		model.ManifestExtensions = *block.ManifestExtensions
	}
	if block.DefaultExtension != nil {
		model.DefaultExtension = *block.DefaultExtension
	}
	if block.Options == nil {
		return nil
	}

	attrs, diags := block.Options.Remain.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("failed to read options block: %w", diags)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("failed to evaluate option %q: %w", name, diags)
		}
		options[name] = val
	}
	return nil
}

// findConfigFiles expands each path into the .hcl files beneath it.
func (l *Loader) findConfigFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("config path not accessible: %w", err)
		}
		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(p, ".hcl")
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		files = append(files, p)
	}
	return files, nil
}

func typesOf(values map[string]cty.Value) map[string]cty.Type {
	types := make(map[string]cty.Type, len(values))
	for name, val := range values {
		types[name] = val.Type()
	}
	return types
}
