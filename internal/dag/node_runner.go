package dag

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/webforge/internal/ctxlog"
	"github.com/vk/webforge/internal/stale"
)

// executeNode runs a single node: freshness gate first, then the stage's
// handler. By the time a node is picked up all of its dependencies have
// completed, so a missing input means no stage produces it.
func (e *Executor) executeNode(ctx context.Context, node *Node) error {
	logger := ctxlog.FromContext(ctx).With("stage", node.Stage.Name)

	result, err := stale.Check(e.execCtx.WorkDir, node.Stage.Inputs, node.Stage.Outputs)
	if err != nil {
		var missing *stale.MissingInputError
		if errors.As(err, &missing) {
			return fmt.Errorf("stage %q: input %q does not exist and no stage produces it", node.Stage.Name, missing.Path)
		}
		return fmt.Errorf("stage %q: freshness check failed: %w", node.Stage.Name, err)
	}

	if !result.Stale {
		node.Fresh = true
		node.FreshReason = result.Reason
		logger.Info("⏭️  Stage is up to date, skipping.")
		return nil
	}

	handler, ok := e.registry.Handler(node.Stage.Handler)
	if !ok {
		return fmt.Errorf("stage %q references unknown handler %q", node.Stage.Name, node.Stage.Handler)
	}

	if lock, serial := e.serialLocks[node.ID]; serial {
		lock.Lock()
		defer lock.Unlock()
	}

	logger.Info("▶️  Starting stage", "reason", result.Reason)
	node.Executed = true
	if err := handler(ctx, e.execCtx, node.Stage); err != nil {
		return fmt.Errorf("stage %q: %w", node.Stage.Name, err)
	}
	logger.Info("✅ Finished stage")
	return nil
}
