package dag

import (
	"context"
	"fmt"

	"github.com/vk/webforge/internal/config"
	"github.com/vk/webforge/internal/ctxlog"
)

// NodeID returns the graph identifier for a stage name.
func NodeID(stageName string) string {
	return "stage." + stageName
}

// Build constructs a complete, validated dependency graph from the pipeline
// model.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := &Graph{Nodes: make(map[string]*Node)}

	// First pass: create one node per stage.
	for _, stage := range model.Stages {
		id := NodeID(stage.Name)
		graph.Nodes[id] = &Node{
			ID:         id,
			Stage:      stage,
			Deps:       make(map[string]*Node),
			Dependents: make(map[string]*Node),
		}
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: link explicit dependencies.
	for _, node := range graph.Nodes {
		for _, depName := range node.Stage.DependsOn {
			depNode, ok := graph.Nodes[NodeID(depName)]
			if !ok {
				return nil, fmt.Errorf("stage %q depends on non-existent stage %q", node.Stage.Name, depName)
			}
			if depNode == node {
				return nil, fmt.Errorf("stage %q depends on itself", node.Stage.Name)
			}
			node.Deps[depNode.ID] = depNode
			depNode.Dependents[node.ID] = node
		}
	}
	logger.Debug("Build: Node linking complete.")

	// Third pass: initialize counters.
	for _, node := range graph.Nodes {
		node.SetInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	return graph, nil
}

// detectCycles checks for circular dependencies in the graph using DFS.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(node *Node) error
	visit = func(node *Node) error {
		visiting[node.ID] = true
		for _, dep := range node.Deps {
			if visiting[dep.ID] {
				return fmt.Errorf("cycle detected involving '%s'", dep.ID)
			}
			if !visited[dep.ID] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, node.ID)
		visited[node.ID] = true
		return nil
	}

	for _, node := range g.Nodes {
		if !visited[node.ID] {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}
