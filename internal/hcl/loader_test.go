package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/webforge/internal/config"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forge.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingOptionalManifest(t *testing.T) {
	m, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "forge.hcl"), false)
	require.NoError(t, err)
	assert.Nil(t, m.Project)

	// An empty manifest leaves the default pipeline untouched.
	model := config.Default(config.NewProject("e-for-anything", true, true))
	before := len(model.Stages)
	require.NoError(t, m.ApplyStages(context.Background(), model))
	assert.Len(t, model.Stages, before)
}

func TestLoad_MissingRequiredManifest(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "forge.hcl"), true)
	assert.Error(t, err)
}

func TestLoad_InvalidHCLIsRejected(t *testing.T) {
	path := writeManifest(t, `project "x" { this is not hcl`)
	_, err := NewLoader().Load(context.Background(), path, true)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestApplyProject_Toggles(t *testing.T) {
	path := writeManifest(t, `
project "breakout" {
  managed_assets = false
  verify         = false
}
`)
	m, err := NewLoader().Load(context.Background(), path, true)
	require.NoError(t, err)

	name := "e-for-anything"
	managed := true
	verify := true
	m.ApplyProject(&name, &managed, &verify)

	assert.Equal(t, "breakout", name)
	assert.False(t, managed)
	assert.False(t, verify)
}

func TestApplyProject_PartialBlockKeepsOtherSettings(t *testing.T) {
	path := writeManifest(t, `project "breakout" {}`)
	m, err := NewLoader().Load(context.Background(), path, true)
	require.NoError(t, err)

	name := "e-for-anything"
	managed := true
	verify := false
	m.ApplyProject(&name, &managed, &verify)

	assert.Equal(t, "breakout", name)
	assert.True(t, managed)
	assert.False(t, verify)
}

func TestApplyStages_OverridesOnlySetAttributes(t *testing.T) {
	path := writeManifest(t, `
stage "compile" {
  command = ["cargo", "build", "--release", "--target", "wasm32-unknown-unknown", "--features", "web"]
}
`)
	m, err := NewLoader().Load(context.Background(), path, true)
	require.NoError(t, err)

	model := config.Default(config.NewProject("e-for-anything", true, true))
	require.NoError(t, m.ApplyStages(context.Background(), model))

	compile := model.Stage("compile")
	require.NotNil(t, compile)
	assert.Contains(t, compile.Command, "--features")
	// Untouched attributes keep their defaults.
	assert.Equal(t, []string{"src", "Cargo.toml"}, compile.Inputs)
	assert.NotEmpty(t, compile.Outputs)
}

func TestApplyStages_AddsNewStage(t *testing.T) {
	path := writeManifest(t, `
stage "optimize" {
  command    = ["wasm-opt", "-Oz", "-o", "e-for-anything_bg.wasm", "e-for-anything_bg.wasm"]
  inputs     = ["e-for-anything_bg.wasm"]
  depends_on = ["bindings"]
  serial     = true
}
`)
	m, err := NewLoader().Load(context.Background(), path, true)
	require.NoError(t, err)

	model := config.Default(config.NewProject("e-for-anything", true, true))
	require.NoError(t, m.ApplyStages(context.Background(), model))

	opt := model.Stage("optimize")
	require.NotNil(t, opt)
	assert.True(t, opt.Serial)
	assert.Equal(t, []string{"bindings"}, opt.DependsOn)
}

func TestApplyStages_InterpolatesProjectVariables(t *testing.T) {
	path := writeManifest(t, `
stage "optimize" {
  command    = ["wasm-opt", "-Oz", "-o", project.web_binary, project.web_binary]
  inputs     = [project.web_binary]
  depends_on = ["bindings"]
}
`)
	m, err := NewLoader().Load(context.Background(), path, true)
	require.NoError(t, err)

	model := config.Default(config.NewProject("e-for-anything", true, true))
	require.NoError(t, m.ApplyStages(context.Background(), model))

	opt := model.Stage("optimize")
	require.NotNil(t, opt)
	assert.Equal(t, []string{"wasm-opt", "-Oz", "-o", "e-for-anything_bg.wasm", "e-for-anything_bg.wasm"}, opt.Command)
	assert.Equal(t, []string{"e-for-anything_bg.wasm"}, opt.Inputs)
}

func TestApplyStages_UnknownVariableIsRejected(t *testing.T) {
	path := writeManifest(t, `
stage "optimize" {
  command = ["wasm-opt", crate.web_binary]
}
`)
	m, err := NewLoader().Load(context.Background(), path, true)
	require.NoError(t, err)

	model := config.Default(config.NewProject("e-for-anything", true, true))
	err = m.ApplyStages(context.Background(), model)
	assert.ErrorContains(t, err, "failed to decode manifest stages")
}

func TestApplyStages_NewStageNeedsCommandOrHandler(t *testing.T) {
	path := writeManifest(t, `
stage "mystery" {
  inputs = ["x"]
}
`)
	m, err := NewLoader().Load(context.Background(), path, true)
	require.NoError(t, err)

	model := config.Default(config.NewProject("e-for-anything", true, true))
	err = m.ApplyStages(context.Background(), model)
	assert.ErrorContains(t, err, "neither a handler nor a command")
}
