// Package hcl loads the optional forge.hcl manifest and applies it on top of
// the default pipeline model.
package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/schema"
)

// Manifest is a parsed forge.hcl file. The project block is decoded eagerly;
// the stage blocks are kept as an undecoded body until ApplyStages can
// evaluate them with the resolved project variables in scope.
type Manifest struct {
	Project *schema.ProjectBlock

	stagesBody hcl.Body
}

// Loader is the HCL-specific manifest loader.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the manifest at path. A missing file is not an error when
// required is false: the pipeline then runs on pure defaults.
func (l *Loader) Load(ctx context.Context, path string, required bool) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			logger.Debug("No manifest found, using default pipeline.", "path", path)
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("manifest %q is not readable: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	var root schema.ManifestConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}

	logger.Debug("Manifest loaded.", "path", path, "has_project_block", root.Project != nil)
	return &Manifest{Project: root.Project, stagesBody: root.Remain}, nil
}
