package stages

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/fsutil"
	"github.com/vk/webforge/internal/proc"
	"github.com/vk/webforge/internal/registry"
	"github.com/vk/webforge/internal/wasmcheck"
)

// Exec runs the stage's command as an external process and propagates its
// exit status.
func Exec(ctx context.Context, ec *registry.ExecContext, stage *config.Stage) error {
	if len(stage.Command) == 0 {
		return fmt.Errorf("stage %q has no command", stage.Name)
	}
	return proc.Run(ctx, ec.WorkDir, stage.Command, ec.Stdout, ec.Stderr)
}

// Archive packages the bundle by invoking the external archiver, after
// checking that every declared input actually exists. The archiver's own
// append semantics apply on re-runs; the precheck is what guarantees the
// bundle is never produced from a missing binary, shim, or asset tree.
func Archive(ctx context.Context, ec *registry.ExecContext, stage *config.Stage) error {
	for _, in := range stage.Inputs {
		if !fsutil.Exists(filepath.Join(ec.WorkDir, in)) {
			return fmt.Errorf("cannot package: required input %q is missing", in)
		}
	}
	return Exec(ctx, ec, stage)
}

// CopyTree copies the staging directory into the serving directory. The
// stage's command holds the source and destination, in that order.
func CopyTree(ctx context.Context, ec *registry.ExecContext, stage *config.Stage) error {
	if len(stage.Command) != 2 {
		return fmt.Errorf("stage %q: copy_tree expects exactly [src, dst], got %d arguments", stage.Name, len(stage.Command))
	}
	src := filepath.Join(ec.WorkDir, stage.Command[0])
	dst := filepath.Join(ec.WorkDir, stage.Command[1])

	ctxlog.FromContext(ctx).Debug("Copying asset tree.", "src", src, "dst", dst)
	return fsutil.CopyTree(src, dst)
}

// Remind is the manual gate for the out-of-band asset preprocessor. It never
// fails and transforms nothing; it only tells the operator what the pipeline
// cannot do for them.
func Remind(ctx context.Context, ec *registry.ExecContext, stage *config.Stage) error {
	ctxlog.FromContext(ctx).Info("📣 "+stage.Description, "stage", stage.Name)
	return nil
}

// VerifyWasm validates the stage's first input as a WebAssembly module.
func VerifyWasm(ctx context.Context, ec *registry.ExecContext, stage *config.Stage) error {
	if len(stage.Inputs) == 0 {
		return fmt.Errorf("stage %q: verify_wasm requires an input artifact", stage.Name)
	}
	return wasmcheck.VerifyFile(ctx, filepath.Join(ec.WorkDir, stage.Inputs[0]))
}
