package dag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/registry"
)

// Executor runs a graph to completion on a pool of workers.
type Executor struct {
	Graph      *Graph
	numWorkers int
	registry   *registry.Registry
	execCtx    *registry.ExecContext

	wg sync.WaitGroup

	// serialLocks enforces the non-reentrancy contract for Serial stages:
	// even if a stage were ever scheduled more than once in an invocation,
	// its handler never overlaps with itself.
	serialLocks map[string]*sync.Mutex
}

// New creates an executor for the given graph.
func New(graph *Graph, numWorkers int, reg *registry.Registry, execCtx *registry.ExecContext) *Executor {
	if numWorkers < 1 {
		numWorkers = 1
	}
	locks := make(map[string]*sync.Mutex)
	for _, node := range graph.Nodes {
		if node.Stage.Serial {
			locks[node.ID] = &sync.Mutex{}
		}
	}
	return &Executor{
		Graph:       graph,
		numWorkers:  numWorkers,
		registry:    reg,
		execCtx:     execCtx,
		serialLocks: locks,
	}
}

// Run executes the entire graph concurrently and returns an error if any node
// fails. It respects the cancellation signal from the provided context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *Node, len(e.Graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root nodes...")
	rootNodeCount := 0
	for _, node := range e.Graph.Nodes {
		if node.depCount.Load() == 0 {
			readyChan <- node
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	e.wg.Add(len(e.Graph.Nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)

	var failedNodes []string
	var rootCauseError error
	for _, node := range e.Graph.Nodes {
		if node.State.Load() != int32(Failed) {
			continue
		}
		// A "skipped" error is a symptom, not a cause.
		if node.Error != nil && !strings.HasPrefix(node.Error.Error(), "skipped") && !errors.Is(node.Error, context.Canceled) {
			failedNodes = append(failedNodes, node.ID)
			if rootCauseError == nil {
				rootCauseError = node.Error
			}
		}
	}

	if rootCauseError != nil {
		sort.Strings(failedNodes)
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}

	return nil
}

// skipDependents recursively marks all downstream nodes as failed and
// decrements the WaitGroup.
func (e *Executor) skipDependents(ctx context.Context, node *Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range node.Dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping dependent stage due to upstream failure.", "nodeID", dependent.ID, "dependency", node.ID)
			dependent.State.Store(int32(Failed))
			dependent.Error = fmt.Errorf("skipped due to upstream failure of '%s'", node.ID)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		})
	}
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", node.ID)

		if ctx.Err() != nil {
			node.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping stage execution.")
				node.State.Store(int32(Failed))
				node.Error = ctx.Err()
				e.wg.Done()
				// Nodes reachable only through this one will never be
				// unlocked; release their WaitGroup slots too.
				e.skipDependents(ctx, node)
			})
			continue
		}

		node.State.Store(int32(Running))
		err := e.executeNode(ctx, node)

		if err != nil {
			workerLogger.Error("Stage failed.", "error", err)
			node.State.Store(int32(Failed))
			node.Error = err
			cancel()
			e.skipDependents(ctx, node)
			e.wg.Done()
			continue
		}

		node.State.Store(int32(Done))

		for _, dependent := range node.Dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent stage.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}

		e.wg.Done()
	}
}
