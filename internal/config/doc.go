// Package config defines the format-agnostic model of a build pipeline: the
// project settings and the ordered set of stages with their inputs, outputs,
// commands and dependencies. The canonical pipeline for a Rust/Bevy web game
// is constructed by Default; an HCL manifest may override it.
package config
