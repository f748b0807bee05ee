// Package stages provides the built-in stage handlers: external tool
// invocation, archive packaging, asset staging, the manual asset-import
// reminder, and WebAssembly artifact verification. It also implements the
// clean operation.
package stages

import (
	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/registry"
)

// RegisterAll installs every built-in handler into the registry.
func RegisterAll(r *registry.Registry) {
	r.Register(config.HandlerExec, Exec)
	r.Register(config.HandlerArchive, Archive)
	r.Register(config.HandlerCopyTree, CopyTree)
	r.Register(config.HandlerRemind, Remind)
	r.Register(config.HandlerVerifyWasm, VerifyWasm)
}
