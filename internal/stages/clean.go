package stages

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/ctxlog"
)

// Clean removes all generated, non-source artifacts: the archive, the JS
// shim, every WebAssembly file at the top of the working directory, and the
// serving directory when it is generated from staged assets. It never fails
// when a target is already absent, and it never touches source files or the
// compiler's own target/ cache.
func Clean(ctx context.Context, workDir string, p *config.Project) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🧹 Cleaning generated artifacts.")

	targets := []string{p.Archive(), p.Shim()}

	wasmFiles, err := filepath.Glob(filepath.Join(workDir, "*.wasm"))
	if err != nil {
		return err
	}
	for _, f := range wasmFiles {
		targets = append(targets, filepath.Base(f))
	}

	for _, t := range targets {
		path := filepath.Join(workDir, t)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		logger.Debug("Removed artifact.", "path", t)
	}

	// In the unmanaged variant the asset directory is an externally authored
	// source tree, so it must survive a clean.
	if p.ManagedAssets {
		path := filepath.Join(workDir, p.AssetsDir)
		if err := os.RemoveAll(path); err != nil {
			return err
		}
		logger.Debug("Removed staged asset directory.", "path", p.AssetsDir)
	}

	logger.Info("✅ Clean finished.")
	return nil
}
