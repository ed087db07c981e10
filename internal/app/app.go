package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/flatcomp/internal/backend"
	"github.com/vk/flatcomp/internal/config"
	"github.com/vk/flatcomp/internal/ctxlog"
	"github.com/vk/flatcomp/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	appConfig *Config
	model     *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and backend
// registry. A failure to load or validate configuration is a fatal startup
// error and panics; the entrypoint recovers it into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var configPaths []string
	if appConfig.ConfigPath != "" {
		configPaths = append(configPaths, appConfig.ConfigPath)
	}

	model, err := loader.Load(ctx, configPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	// Command-line overrides win over the config file.
	if appConfig.OutDir != "" {
		model.OutDir = appConfig.OutDir
	}
	if appConfig.Port > 0 {
		model.Port = appConfig.Port
	}
	if appConfig.SourceMaps {
		model.SourceMaps = true
	}
	model.Port = model.ResolvePort()
	logger.Debug("Configuration loaded and merged.",
		"port", model.Port, "out_dir", model.OutDir, "source_maps", model.SourceMaps)

	// One remote backend instance serves every source and manifest
	// extension; the native backend takes plain JS.
	reg := registry.New()
	remote := backend.NewRemote(model.Port, model.BackendOptions)
	for _, ext := range model.RecognizedExtensions() {
		reg.Register(ext, remote)
	}
	reg.Register(model.DefaultExtension, backend.NewNative())

	if err := reg.Validate(model.RecognizedExtensions()); err != nil {
		// Mismatch between config and registered backends is a programmer error.
		panic(err)
	}
	logger.Debug("Backend registry populated and validated.")

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		appConfig: appConfig,
		model:     model,
	}
}

// Model returns the merged configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Registry returns the application's backend registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
