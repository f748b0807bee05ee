package dag

import (
	"sync"
	"sync/atomic"

	"github.com/vk/webforge/internal/config"
)

// NodeState tracks a node's progress through the executor.
type NodeState int32

const (
	Pending NodeState = iota
	Running
	Done
	Failed
)

// Node is a single stage in the dependency graph.
type Node struct {
	ID    string
	Stage *config.Stage

	Deps       map[string]*Node
	Dependents map[string]*Node

	State atomic.Int32
	Error error

	// depCount reaches zero when every dependency has finished, making the
	// node ready for a worker to pick up.
	depCount atomic.Int32

	// skipOnce guards the one-time transition into the Failed state when a
	// node is skipped due to an upstream failure or cancellation.
	skipOnce sync.Once

	// Executed records whether the node's handler actually ran; a fresh node
	// completes as Done without executing.
	Executed bool

	// Fresh records that the staleness check found the node up to date.
	Fresh bool

	// FreshReason is the staleness verdict, for logging and tests.
	FreshReason string
}

// SetInitialCounters primes the dependency counter before execution starts.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
}

// Graph is the validated dependency graph of all pipeline stages.
type Graph struct {
	Nodes map[string]*Node
}
