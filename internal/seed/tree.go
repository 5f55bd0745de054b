// Package seed holds the default datasets used when nothing has been persisted,
// plus the canned children served by the simulated fetcher.
package seed

import "github.com/alexanderramin/kanbantree/internal/domain"

// TreeKey is the storage key the forest snapshot is persisted under.
const TreeKey = "tree_view_data"

// Forest returns a fresh copy of the default root nodes.
func Forest() []domain.TreeNode {
	return []domain.TreeNode{
		domain.NewLazy("node-1", "Design System"),
		domain.NewLazy("node-2", "Frontend"),
		domain.NewLazy("node-3", "Backend"),
		domain.NewLeaf("node-4", "Documentation"),
	}
}

// Children returns the canned children for the simulated fetcher, keyed by
// parent id. Each call returns fresh slices.
func Children() map[string][]domain.TreeNode {
	lazy, leaf := domain.NewLazy, domain.NewLeaf
	return map[string][]domain.TreeNode{
		"node-1": {
			lazy("node-1-1", "Colors"),
			leaf("node-1-2", "Typography"),
			lazy("node-1-3", "Components"),
		},
		"node-2": {
			lazy("node-2-1", "React"),
			leaf("node-2-2", "TypeScript"),
			leaf("node-2-3", "Vite"),
		},
		"node-3": {
			leaf("node-3-1", "Node.js"),
			lazy("node-3-2", "Database"),
		},
		"node-1-1": {
			leaf("node-1-1-1", "Primary"),
			leaf("node-1-1-2", "Secondary"),
			leaf("node-1-1-3", "Neutral"),
		},
		"node-1-3": {
			leaf("node-1-3-1", "Buttons"),
			leaf("node-1-3-2", "Inputs"),
			leaf("node-1-3-3", "Cards"),
		},
		"node-2-1": {
			leaf("node-2-1-1", "Hooks"),
			leaf("node-2-1-2", "Context"),
		},
		"node-3-2": {
			leaf("node-3-2-1", "PostgreSQL"),
			leaf("node-3-2-2", "Redis"),
		},
	}
}
