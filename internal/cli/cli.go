package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/vk/webforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envConfig holds the environment-variable overrides. Flags are defined with
// these as defaults, so explicitly passed flags always win.
type envConfig struct {
	Project       string `env:"WEBFORGE_PROJECT" envDefault:"e-for-anything"`
	ManagedAssets bool   `env:"WEBFORGE_MANAGED_ASSETS" envDefault:"true"`
	Verify        bool   `env:"WEBFORGE_VERIFY" envDefault:"true"`
	LogFormat     string `env:"WEBFORGE_LOG_FORMAT" envDefault:"text"`
	LogLevel      string `env:"WEBFORGE_LOG_LEVEL" envDefault:"info"`
	Workers       int    `env:"WEBFORGE_WORKERS" envDefault:"4"`
	ServePort     int    `env:"WEBFORGE_SERVE_PORT" envDefault:"8080"`
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid environment configuration: %v", err)}
	}

	flagSet := flag.NewFlagSet("webforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
webforge - a declarative build pipeline for Rust/Bevy WebAssembly web bundles.

Usage:
  webforge [options] [TARGET]

Targets:
  all     Build the distributable bundle end-to-end (default).
  clean   Remove generated artifacts; exits 0 even if nothing to remove.
  serve   Build, then serve the bundle locally with live reload.

Options:
`)
		flagSet.PrintDefaults()
	}

	projectFlag := flagSet.String("project", envCfg.Project, "Project (crate) name; artifact names derive from it.")
	workDirFlag := flagSet.String("C", ".", "Run as if started in this directory.")
	manifestFlag := flagSet.String("pipeline", "", "Path to a forge.hcl manifest overriding the default pipeline.")
	managedFlag := flagSet.Bool("managed-assets", envCfg.ManagedAssets, "Stage preprocessed assets from imported_assets/ into assets/.")
	verifyFlag := flagSet.Bool("verify", envCfg.Verify, "Validate the generated WebAssembly binary before packaging.")
	servePortFlag := flagSet.Int("serve-port", envCfg.ServePort, "Port for the serve target.")
	logFormatFlag := flagSet.String("log-format", envCfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envCfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", envCfg.Workers, "Number of concurrent workers for the executor.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	target := app.TargetAll
	if flagSet.NArg() > 0 {
		target = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected extra arguments: %v", flagSet.Args()[1:])}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Target:           target,
		WorkDir:          *workDirFlag,
		ManifestPath:     *manifestFlag,
		ManifestRequired: *manifestFlag != "",
		Project:          *projectFlag,
		ManagedAssets:    *managedFlag,
		Verify:           *verifyFlag,
		ServePort:        *servePortFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		WorkerCount:      *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
