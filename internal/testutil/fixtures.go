package testutil

import (
	"github.com/alexanderramin/kanbantree/internal/domain"
)

// Node options
type NodeOption func(*domain.TreeNode)

// WithChildren makes the node fetched with the given children.
func WithChildren(children ...domain.TreeNode) NodeOption {
	return func(n *domain.TreeNode) {
		n.State = domain.ChildrenFetched
		n.Children = append([]domain.TreeNode{}, children...)
	}
}

// Lazy makes the node unfetched with no children.
func Lazy() NodeOption {
	return func(n *domain.TreeNode) {
		n.State = domain.ChildrenNotFetched
		n.Children = nil
	}
}

// Loading marks the node as having a fetch in flight.
func Loading() NodeOption {
	return func(n *domain.TreeNode) {
		n.State = domain.ChildrenFetching
	}
}

// NewTestNode builds a leaf labelled "Node <id>" unless options say otherwise.
func NewTestNode(id string, opts ...NodeOption) domain.TreeNode {
	n := domain.NewLeaf(id, "Node "+id)
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// RootIDs returns the ids of the root level, in order.
func RootIDs(forest []domain.TreeNode) []string {
	ids := make([]string, 0, len(forest))
	for _, n := range forest {
		ids = append(ids, n.ID)
	}
	return ids
}
