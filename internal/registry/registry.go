// Package registry maps stage handler names to the Go functions that execute
// them, and validates that every stage in a pipeline model resolves to a
// registered handler before execution starts.
package registry

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/ctxlog"
)

// ExecContext carries the per-run environment shared by all handlers.
type ExecContext struct {
	// WorkDir is the project root all stage paths are relative to.
	WorkDir string

	// Stdout and Stderr receive the output of invoked external tools.
	Stdout io.Writer
	Stderr io.Writer

	Project *config.Project
}

// Handler executes a single stage.
type Handler func(ctx context.Context, ec *ExecContext, stage *config.Stage) error

// Registry holds all registered stage handlers.
type Registry struct {
	handlers map[string]Handler
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under the given name, replacing any previous one.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Handler looks up a handler by name. The empty name resolves to the exec
// handler.
func (r *Registry) Handler(name string) (Handler, bool) {
	if name == "" {
		name = config.HandlerExec
	}
	h, ok := r.handlers[name]
	return h, ok
}

// Validate checks that every stage in the model references a registered
// handler. A mismatch is a programmer error caught at startup, before any
// external tool is invoked.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	for _, stage := range model.Stages {
		if _, ok := r.Handler(stage.Handler); !ok {
			return fmt.Errorf("stage %q references unknown handler %q", stage.Name, stage.Handler)
		}
	}
	logger.Debug("Registry validation passed.", "handlers", len(r.handlers), "stages", len(model.Stages))
	return nil
}
