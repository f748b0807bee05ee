package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/hcl"
	"github.com/vk/webforge/internal/registry"
	"github.com/vk/webforge/internal/stages"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, the pipeline model
// resolved from defaults plus the optional manifest, and a validated handler
// registry. Fatal startup configuration errors panic; the caller recovers
// them into a clean exit.
func NewApp(outW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	manifestPath := appConfig.ManifestPath
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(appConfig.WorkDir, manifestPath)
	}

	manifest, err := hcl.NewLoader().Load(ctx, manifestPath, appConfig.ManifestRequired)
	if err != nil {
		panic(fmt.Errorf("failed to load manifest: %w", err))
	}

	// The manifest's project block is the project's own source of truth and
	// overrides flag and environment values.
	name := appConfig.Project
	managedAssets := appConfig.ManagedAssets
	verify := appConfig.Verify
	manifest.ApplyProject(&name, &managedAssets, &verify)

	project := config.NewProject(name, managedAssets, verify)
	model := config.Default(project)
	if err := manifest.ApplyStages(ctx, model); err != nil {
		panic(fmt.Errorf("invalid pipeline configuration: %w", err))
	}
	logger.Debug("Pipeline model resolved.", "project", project.Name, "stages", len(model.Stages), "managed_assets", project.ManagedAssets)

	reg := registry.New()
	stages.RegisterAll(reg)
	if err := reg.Validate(ctx, model); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		config:   appConfig,
	}
}

// Model returns the resolved pipeline model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
