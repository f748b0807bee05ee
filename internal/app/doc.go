// Package app wires the application together: logger, manifest loading,
// pipeline model construction, handler registry, and the run loop for the
// all, clean, and serve targets.
package app
