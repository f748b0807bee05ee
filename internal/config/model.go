package config

import (
	"fmt"
	"path/filepath"
)

// WasmTarget is the freestanding WebAssembly target triple the compiler
// builds for.
const WasmTarget = "wasm32-unknown-unknown"

// Handler names understood by the stage registry.
const (
	HandlerExec       = "exec"
	HandlerArchive    = "archive"
	HandlerCopyTree   = "copy_tree"
	HandlerRemind     = "remind"
	HandlerVerifyWasm = "verify_wasm"
)

// Project holds the project-level settings and the fixed artifact names the
// pipeline produces and consumes.
type Project struct {
	// Name is the crate/binary name; all top-level artifacts derive from it.
	Name string

	// ManagedAssets selects the pipeline variant that stages preprocessed
	// assets from StagingDir into AssetsDir. When false, AssetsDir is an
	// externally authored source directory and is never generated or cleaned.
	ManagedAssets bool

	// Verify enables validation of the generated WebAssembly binary before
	// packaging.
	Verify bool

	Entry      string // static HTML entry point
	AssetsDir  string // runtime asset tree served alongside the binary
	StagingDir string // manually preprocessed assets, managed variant only
}

// NewProject returns a Project with the fixed filesystem layout filled in.
func NewProject(name string, managedAssets, verify bool) *Project {
	return &Project{
		Name:          name,
		ManagedAssets: managedAssets,
		Verify:        verify,
		Entry:         "index.html",
		AssetsDir:     "assets",
		StagingDir:    "imported_assets",
	}
}

// CompiledBinary is the release-mode build product of the compiler stage.
func (p *Project) CompiledBinary() string {
	return filepath.Join("target", WasmTarget, "release", p.Name+".wasm")
}

// Shim is the JavaScript loader emitted by the bindings generator.
func (p *Project) Shim() string {
	return p.Name + ".js"
}

// WebBinary is the top-level copy of the WebAssembly binary emitted by the
// bindings generator.
func (p *Project) WebBinary() string {
	return p.Name + "_bg.wasm"
}

// Archive is the final distributable bundle.
func (p *Project) Archive() string {
	return p.Name + ".zip"
}

// Stage is a single named node of the pipeline: a command (or built-in
// handler) gated by file-based inputs and outputs.
type Stage struct {
	Name        string
	Description string

	// Handler selects how the stage runs; empty means HandlerExec.
	Handler string

	// Command is the fixed argument vector for exec-style handlers. Built-in
	// handlers reuse it for their positional arguments.
	Command []string

	// Inputs and Outputs are paths relative to the working directory. A stage
	// with no outputs is always stale and therefore always runs.
	Inputs  []string
	Outputs []string

	DependsOn []string

	// Serial stages must never run concurrently with themselves, even if the
	// graph evaluator would otherwise schedule them twice in one invocation.
	Serial bool
}

// Model is the unified representation of the whole pipeline.
type Model struct {
	Project *Project
	Stages  []*Stage
}

// Stage returns the stage with the given name, or nil.
func (m *Model) Stage(name string) *Stage {
	for _, s := range m.Stages {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Validate checks structural invariants that do not require the dependency
// graph: unique non-empty stage names and a command for exec-style stages.
func (m *Model) Validate() error {
	if m.Project == nil || m.Project.Name == "" {
		return fmt.Errorf("project name must not be empty")
	}

	seen := make(map[string]struct{}, len(m.Stages))
	for _, s := range m.Stages {
		if s.Name == "" {
			return fmt.Errorf("stage with empty name")
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate stage %q", s.Name)
		}
		seen[s.Name] = struct{}{}

		handler := s.Handler
		if handler == "" {
			handler = HandlerExec
		}
		if (handler == HandlerExec || handler == HandlerArchive) && len(s.Command) == 0 {
			return fmt.Errorf("stage %q has no command", s.Name)
		}
	}
	return nil
}
