package app

import (
	"errors"
	"fmt"
)

// Targets accepted on the command line.
const (
	TargetAll   = "all"
	TargetClean = "clean"
	TargetServe = "serve"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Target  string
	WorkDir string

	// ManifestPath points at the optional forge.hcl manifest. When
	// ManifestRequired is false a missing file simply means defaults.
	ManifestPath     string
	ManifestRequired bool

	Project       string
	ManagedAssets bool
	Verify        bool

	ServePort int

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates a Config and applies fallback values.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Target {
	case TargetAll, TargetClean, TargetServe:
	case "":
		cfg.Target = TargetAll
	default:
		return nil, fmt.Errorf("unknown target %q (expected all, clean, or serve)", cfg.Target)
	}

	if cfg.Project == "" {
		return nil, errors.New("project name must not be empty")
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = "forge.hcl"
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	return &cfg, nil
}
