package integration_tests

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/webforge/internal/app"
	"github.com/vk/webforge/internal/testutil"
)

// TestManifest_ProjectBlockWins checks that a forge.hcl project block
// overrides whatever was resolved from flags and environment: verification is
// switched off in the manifest, so a corrupt web binary still packages.
func TestManifest_ProjectBlockWins(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	tc := testutil.InstallToolchain(t, "e-for-anything")
	testutil.StubTool(t, tc.BinDir, "wasm-bindgen",
		"echo garbage > e-for-anything_bg.wasm\n"+
			"echo 'shim' > e-for-anything.js\n"+
			tc.Record("wasm-bindgen"))

	testutil.WriteFile(t, filepath.Join(dir, "forge.hcl"), `
project "e-for-anything" {
  verify = false
}
`)

	// --- Act ---
	result := testutil.RunPipeline(t, dir, func(cfg *app.Config) {
		cfg.Verify = true
	})

	// --- Assert ---
	require.NoError(t, result.Err, "manifest disabled verification, so the corrupt binary must package")
	assert.FileExists(t, filepath.Join(dir, "e-for-anything.zip"))
}

// TestManifest_AddsCustomStage wires a post-processing stage into the
// pipeline purely through the manifest.
func TestManifest_AddsCustomStage(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	tc := testutil.InstallToolchain(t, "e-for-anything")
	testutil.StubTool(t, tc.BinDir, "wasm-opt", tc.Record("wasm-opt"))

	testutil.WriteFile(t, filepath.Join(dir, "forge.hcl"), `
stage "optimize" {
  description = "Shrink the web binary."
  command     = ["wasm-opt", "-O2", project.web_binary]
  depends_on  = ["bindings"]
}
`)

	// --- Act ---
	result := testutil.RunPipeline(t, dir, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, 1, tc.Runs(t, "wasm-opt"), "manifest-declared stage should have executed")
}

// TestManifest_InvalidStageFailsStartup asserts that a manifest stage with
// neither a handler nor a command is rejected before anything runs.
func TestManifest_InvalidStageFailsStartup(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	tc := testutil.InstallToolchain(t, "e-for-anything")

	testutil.WriteFile(t, filepath.Join(dir, "forge.hcl"), `
stage "mystery" {
  description = "No way to run this."
}
`)

	// --- Act ---
	result := testutil.RunPipeline(t, dir, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.ErrorContains(t, result.Err, "startup panicked")
	assert.Equal(t, 0, tc.Runs(t, "cargo"), "nothing should execute when startup fails")
}

// TestManifest_MissingFileIsFineUnlessRequired covers both manifest modes:
// the default path may be absent, an explicitly requested one may not.
func TestManifest_MissingFileIsFineUnlessRequired(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	testutil.InstallToolchain(t, "e-for-anything")

	// --- Act / Assert: optional default path ---
	result := testutil.RunPipeline(t, dir, nil)
	require.NoError(t, result.Err, "a missing default manifest means defaults, not failure")

	// --- Act / Assert: explicitly requested path ---
	result = testutil.RunPipeline(t, dir, func(cfg *app.Config) {
		cfg.ManifestPath = "custom.hcl"
		cfg.ManifestRequired = true
	})
	require.Error(t, result.Err, "an explicitly requested manifest must exist")
	assert.ErrorContains(t, result.Err, "startup panicked")
}
