// Package wasmcheck validates WebAssembly binaries by compiling them with an
// embedded runtime. It catches truncated or corrupt artifacts before they are
// packaged into a bundle.
package wasmcheck

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/vk/webforge/internal/ctxlog"
)

// Verify compiles the given bytes as a WebAssembly module and reports any
// validation failure. The interpreter configuration keeps verification
// portable across build hosts.
func Verify(ctx context.Context, wasm []byte) error {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return fmt.Errorf("invalid WebAssembly module: %w", err)
	}
	return compiled.Close(ctx)
}

// VerifyFile reads and verifies the WebAssembly binary at path.
func VerifyFile(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Verifying WebAssembly artifact.", "path", path)

	wasm, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read artifact: %w", err)
	}
	if err := Verify(ctx, wasm); err != nil {
		return fmt.Errorf("artifact %q failed verification: %w", path, err)
	}

	logger.Debug("Artifact verified.", "path", path, "bytes", len(wasm))
	return nil
}
