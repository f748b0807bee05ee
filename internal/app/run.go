package app

import (
	"context"
	"fmt"

	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/dag"
	"github.com/vk/webforge/internal/devserver"
	"github.com/vk/webforge/internal/registry"
	"github.com/vk/webforge/internal/stages"
)

// Run executes the configured target.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "target", a.config.Target)

	switch a.config.Target {
	case TargetAll:
		return a.runAll(ctx)
	case TargetClean:
		return stages.Clean(ctx, a.config.WorkDir, a.model.Project)
	case TargetServe:
		return a.runServe(ctx)
	default:
		return fmt.Errorf("unknown target %q", a.config.Target)
	}
}

// runAll builds the dependency graph and executes it to completion.
func (a *App) runAll(ctx context.Context) error {
	a.logger.Debug("Building dependency graph from pipeline model...")
	graph, err := dag.Build(ctx, a.model)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	execCtx := &registry.ExecContext{
		WorkDir: a.config.WorkDir,
		Stdout:  a.outW,
		Stderr:  a.outW,
		Project: a.model.Project,
	}

	a.logger.Info("🚀 Starting pipeline execution...", "project", a.model.Project.Name)
	exec := dag.New(graph, a.config.WorkerCount, a.registry, execCtx)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Pipeline finished.", "archive", a.model.Project.Archive())
	return nil
}

// runServe builds the bundle, then serves it with live reload until the
// context is canceled.
func (a *App) runServe(ctx context.Context) error {
	if err := a.runAll(ctx); err != nil {
		return err
	}

	server := devserver.New(a.config.WorkDir, a.sourceInputs(), func(ctx context.Context) error {
		return a.runAll(ctx)
	})
	return server.ListenAndServe(ctx, a.config.ServePort)
}

// sourceInputs returns the inputs no stage produces: the true sources whose
// modification should trigger a rebuild.
func (a *App) sourceInputs() []string {
	produced := make(map[string]struct{})
	for _, s := range a.model.Stages {
		for _, out := range s.Outputs {
			produced[out] = struct{}{}
		}
	}

	var sources []string
	seen := make(map[string]struct{})
	for _, s := range a.model.Stages {
		for _, in := range s.Inputs {
			if _, ok := produced[in]; ok {
				continue
			}
			if _, dup := seen[in]; dup {
				continue
			}
			seen[in] = struct{}{}
			sources = append(sources, in)
		}
	}
	return sources
}
