package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/vk/webforge/internal/app"
)

// HarnessResult holds the outcomes of a pipeline test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunPipeline starts the application against workDir with sensible test
// defaults, applying mutate (when non-nil) to the config first. Startup
// panics are recovered into the result's Err, mirroring how the real
// entrypoint surfaces them.
func RunPipeline(t *testing.T, workDir string, mutate func(*app.Config)) *HarnessResult {
	t.Helper()

	cfg := &app.Config{
		Target:        app.TargetAll,
		WorkDir:       workDir,
		ManifestPath:  "forge.hcl",
		Project:       "e-for-anything",
		ManagedAssets: true,
		Verify:        true,
		LogFormat:     "text",
		LogLevel:      "debug",
		WorkerCount:   4,
	}
	if mutate != nil {
		mutate(cfg)
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
