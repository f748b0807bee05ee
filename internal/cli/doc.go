// Package cli parses command-line arguments and environment overrides into
// an application configuration.
package cli
