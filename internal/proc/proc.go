// Package proc shells out to the external build toolchain. The contract is
// deliberately thin: a fixed argument vector, synchronous wait, and the
// invoked process's exit status propagated as the error. No retries, no
// output capture or parsing.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/vk/webforge/internal/ctxlog"
)

// ExitError reports a tool that ran to completion but exited non-zero.
type ExitError struct {
	Tool string
	Code int
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
}

// Run executes argv synchronously in workDir, wiring the process's stdout and
// stderr to the given writers. It blocks until the process exits and returns
// nil only for a zero exit status.
func Run(ctx context.Context, workDir string, argv []string, stdout, stderr io.Writer) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking external tool.", "argv", argv, "dir", workDir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Tool: argv[0], Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to start %q: %w", argv[0], err)
	}

	logger.Debug("External tool finished.", "tool", argv[0])
	return nil
}
