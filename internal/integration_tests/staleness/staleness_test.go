package integration_tests

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/webforge/internal/app"
	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/testutil"
)

// TestStaleness_RerunSkipsFreshStages is the core incremental-build property:
// building twice with nothing changed must not invoke any external tool a
// second time.
func TestStaleness_RerunSkipsFreshStages(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	tc := testutil.InstallToolchain(t, "e-for-anything")

	require.NoError(t, testutil.RunPipeline(t, dir, nil).Err)

	// --- Act ---
	result := testutil.RunPipeline(t, dir, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, 1, tc.Runs(t, "cargo"), "compile must not rerun on fresh outputs")
	assert.Equal(t, 1, tc.Runs(t, "wasm-bindgen"))
	assert.Equal(t, 1, tc.Runs(t, "zip"))
	assert.Contains(t, result.LogOutput, "⏭️", "second run should report skipped stages")
}

// TestStaleness_TouchedSourceRebuildsChain bumps a source file's mtime and
// expects the compile stage plus everything downstream of it to rerun.
func TestStaleness_TouchedSourceRebuildsChain(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	tc := testutil.InstallToolchain(t, "e-for-anything")

	require.NoError(t, testutil.RunPipeline(t, dir, nil).Err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "src", "main.rs"), future, future))

	// --- Act ---
	result := testutil.RunPipeline(t, dir, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, 2, tc.Runs(t, "cargo"), "touched source must recompile")
	assert.Equal(t, 2, tc.Runs(t, "wasm-bindgen"), "new compiler output must regenerate bindings")
	assert.Equal(t, 2, tc.Runs(t, "zip"), "new bundle contents must repackage")
}

// TestStaleness_TouchedAssetRepackagesOnly bumps a staged asset source and
// expects the asset chain and the package stage to rerun while the compile
// chain stays untouched.
func TestStaleness_TouchedAssetRepackagesOnly(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	tc := testutil.InstallToolchain(t, "e-for-anything")

	require.NoError(t, testutil.RunPipeline(t, dir, nil).Err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "imported_assets", "ball.png"), future, future))

	// --- Act ---
	result := testutil.RunPipeline(t, dir, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, 1, tc.Runs(t, "cargo"), "sources did not change, compile must stay fresh")
	assert.Equal(t, 1, tc.Runs(t, "wasm-bindgen"))
	assert.Equal(t, 2, tc.Runs(t, "zip"), "restaged assets must repackage the bundle")
}

// TestStaleness_CleanPreservesCompilerCache runs clean between two builds and
// expects the second build to reuse the compiler's target/ cache: only the
// artifacts clean removed are regenerated.
func TestStaleness_CleanPreservesCompilerCache(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.ScaffoldProject(t, dir, true)
	tc := testutil.InstallToolchain(t, "e-for-anything")

	require.NoError(t, testutil.RunPipeline(t, dir, nil).Err)

	cleanResult := testutil.RunPipeline(t, dir, func(cfg *app.Config) {
		cfg.Target = app.TargetClean
	})
	require.NoError(t, cleanResult.Err)
	assert.NoFileExists(t, filepath.Join(dir, "e-for-anything.zip"))
	assert.FileExists(t, filepath.Join(dir, "target", config.WasmTarget, "release", "e-for-anything.wasm"),
		"clean must leave the compiler cache alone")

	// --- Act ---
	result := testutil.RunPipeline(t, dir, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, 1, tc.Runs(t, "cargo"), "cached compiler output must not recompile")
	assert.Equal(t, 2, tc.Runs(t, "wasm-bindgen"), "clean removed the shim, bindings must rerun")
	assert.Equal(t, 2, tc.Runs(t, "zip"))
	assert.FileExists(t, filepath.Join(dir, "e-for-anything.zip"))
}
