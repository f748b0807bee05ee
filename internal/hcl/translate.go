package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// ApplyProject folds the manifest's project block into the given settings.
// Only attributes the block actually sets are applied; everything else keeps
// the value resolved from flags and environment.
func (m *Manifest) ApplyProject(name *string, managedAssets, verify *bool) {
	if m.Project == nil {
		return
	}
	if m.Project.Name != "" {
		*name = m.Project.Name
	}
	if m.Project.ManagedAssets != nil {
		*managedAssets = *m.Project.ManagedAssets
	}
	if m.Project.Verify != nil {
		*verify = *m.Project.Verify
	}
}

// ApplyStages decodes the manifest's stage blocks with the resolved project
// variables in scope and merges them into the model. A block matching an
// existing stage by name overrides only the attributes it sets; unmatched
// blocks become new stages and must declare how to run.
func (m *Manifest) ApplyStages(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	blocks, err := m.decodeStages(model.Project)
	if err != nil {
		return err
	}

	for _, block := range blocks {
		if existing := model.Stage(block.Name); existing != nil {
			logger.Debug("Manifest overrides stage.", "stage", block.Name)
			overrideStage(existing, block)
			continue
		}

		stage := &config.Stage{
			Name:        block.Name,
			Description: block.Description,
			Handler:     block.Handler,
			Command:     block.Command,
			Inputs:      block.Inputs,
			Outputs:     block.Outputs,
			DependsOn:   block.DependsOn,
		}
		if block.Serial != nil {
			stage.Serial = *block.Serial
		}
		if stage.Handler == "" && len(stage.Command) == 0 {
			return fmt.Errorf("stage %q from manifest declares neither a handler nor a command", block.Name)
		}
		logger.Debug("Manifest adds stage.", "stage", block.Name)
		model.Stages = append(model.Stages, stage)
	}

	return model.Validate()
}

// decodeStages evaluates the stage blocks. Manifests may interpolate the
// project's artifact names, e.g. `command = ["wasm-opt", project.web_binary]`.
func (m *Manifest) decodeStages(p *config.Project) ([]*schema.StageBlock, error) {
	if m.stagesBody == nil {
		return nil, nil
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"project": cty.ObjectVal(map[string]cty.Value{
				"name":            cty.StringVal(p.Name),
				"entry":           cty.StringVal(p.Entry),
				"assets_dir":      cty.StringVal(p.AssetsDir),
				"staging_dir":     cty.StringVal(p.StagingDir),
				"compiled_binary": cty.StringVal(p.CompiledBinary()),
				"shim":            cty.StringVal(p.Shim()),
				"web_binary":      cty.StringVal(p.WebBinary()),
				"archive":         cty.StringVal(p.Archive()),
			}),
		},
	}

	var cfg schema.StagesConfig
	if diags := gohcl.DecodeBody(m.stagesBody, evalCtx, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest stages: %w", diags)
	}
	return cfg.Stages, nil
}

func overrideStage(stage *config.Stage, block *schema.StageBlock) {
	if block.Description != "" {
		stage.Description = block.Description
	}
	if block.Handler != "" {
		stage.Handler = block.Handler
	}
	if block.Command != nil {
		stage.Command = block.Command
	}
	if block.Inputs != nil {
		stage.Inputs = block.Inputs
	}
	if block.Outputs != nil {
		stage.Outputs = block.Outputs
	}
	if block.DependsOn != nil {
		stage.DependsOn = block.DependsOn
	}
	if block.Serial != nil {
		stage.Serial = *block.Serial
	}
}
