package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/webforge/internal/config"
)

// Toolchain is a stubbed external toolchain (cargo, wasm-bindgen, zip) placed
// on PATH for the duration of a test. Every stub appends one line to a
// per-tool counter file, so tests can assert exactly how often a stage ran.
type Toolchain struct {
	BinDir   string
	Counters string
}

// CounterFile returns the path of the counter file for the named tool.
func (tc *Toolchain) CounterFile(tool string) string {
	return filepath.Join(tc.Counters, tool+".runs")
}

// Runs returns how many times the named tool was invoked.
func (tc *Toolchain) Runs(t *testing.T, tool string) int {
	t.Helper()
	return CountRuns(t, tc.CounterFile(tool))
}

// Record returns the shell snippet a stub uses to log one invocation.
func (tc *Toolchain) Record(tool string) string {
	return fmt.Sprintf("echo run >> %q", tc.CounterFile(tool))
}

// InstallToolchain stubs out the external tools the default pipeline shells
// out to. The cargo stub copies a minimal valid WebAssembly module into the
// compiler's release directory; the wasm-bindgen stub derives the shim and
// web binary from it; the zip stub touches the archive named in its second
// argument. All stubs run with the project directory as their working
// directory, matching how the pipeline invokes the real tools.
func InstallToolchain(t *testing.T, project string) *Toolchain {
	t.Helper()

	base := t.TempDir()
	tc := &Toolchain{
		BinDir:   filepath.Join(base, "bin"),
		Counters: filepath.Join(base, "counters"),
	}
	require.NoError(t, os.MkdirAll(tc.BinDir, 0o755))
	require.NoError(t, os.MkdirAll(tc.Counters, 0o755))

	fixture := filepath.Join(tc.BinDir, "fixture.wasm")
	require.NoError(t, os.WriteFile(fixture, MinimalWasm(), 0o644))

	compiled := filepath.Join("target", config.WasmTarget, "release", project+".wasm")

	StubTool(t, tc.BinDir, "cargo", fmt.Sprintf(
		"mkdir -p %q\ncp %q %q\n%s",
		filepath.Dir(compiled), fixture, compiled, tc.Record("cargo")))

	StubTool(t, tc.BinDir, "wasm-bindgen", fmt.Sprintf(
		"cp %q %q\necho 'export default function init() {}' > %q\n%s",
		compiled, project+"_bg.wasm", project+".js", tc.Record("wasm-bindgen")))

	StubTool(t, tc.BinDir, "zip", fmt.Sprintf(
		"echo archive > \"$2\"\n%s", tc.Record("zip")))

	PrependPath(t, tc.BinDir)
	return tc
}

// ScaffoldProject lays out a minimal crate in dir the way the pipeline
// expects to find it: sources, a crate manifest, the HTML entrypoint, and one
// asset. In the managed variant the asset sits in the preprocessor's staging
// directory; otherwise it is committed directly under assets/.
func ScaffoldProject(t *testing.T, dir string, managed bool) {
	t.Helper()

	WriteFile(t, filepath.Join(dir, "src", "main.rs"), "fn main() {}\n")
	WriteFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"e-for-anything\"\n")
	WriteFile(t, filepath.Join(dir, "index.html"), "<html><body>game</body></html>\n")

	assetDir := "assets"
	if managed {
		assetDir = "imported_assets"
	}
	WriteFile(t, filepath.Join(dir, assetDir, "ball.png"), "png-bytes")
}
