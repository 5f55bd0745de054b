package domain

import (
	"encoding/json"
	"fmt"
)

// ChildState tracks whether a node's children have been fetched.
// The zero value is ChildrenFetched so a bare TreeNode literal is a leaf.
type ChildState uint8

const (
	ChildrenFetched ChildState = iota
	ChildrenNotFetched
	ChildrenFetching
)

func (s ChildState) String() string {
	switch s {
	case ChildrenFetched:
		return "fetched"
	case ChildrenNotFetched:
		return "not_fetched"
	case ChildrenFetching:
		return "fetching"
	default:
		return fmt.Sprintf("ChildState(%d)", uint8(s))
	}
}

// TreeNode is one node of a forest. Children is only meaningful when State is
// ChildrenFetched, or ChildrenFetching for children added while a fetch is in flight.
type TreeNode struct {
	ID       string
	Label    string
	State    ChildState
	Children []TreeNode
}

// NewLeaf returns a fetched node with no children.
func NewLeaf(id, label string) TreeNode {
	return TreeNode{ID: id, Label: label, State: ChildrenFetched, Children: []TreeNode{}}
}

// NewLazy returns a node whose children will be fetched on first expansion.
func NewLazy(id, label string) TreeNode {
	return TreeNode{ID: id, Label: label, State: ChildrenNotFetched}
}

// HasChildren reports whether the node can be expanded: either it has unfetched
// children or at least one fetched child.
func (n TreeNode) HasChildren() bool {
	return n.State != ChildrenFetched || len(n.Children) > 0
}

// IsLoading reports whether a fetch for this node's children is in flight.
func (n TreeNode) IsLoading() bool {
	return n.State == ChildrenFetching
}

// NeedsFetch reports whether expanding the node must fetch its children first.
func (n TreeNode) NeedsFetch() bool {
	return n.State == ChildrenNotFetched
}

// treeNodeWire mirrors the persisted shape: children absent means "not yet fetched".
type treeNodeWire struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Children    *[]TreeNode `json:"children,omitempty"`
	IsLoading   bool        `json:"isLoading,omitempty"`
	HasChildren bool        `json:"hasChildren"`
}

func (n TreeNode) MarshalJSON() ([]byte, error) {
	w := treeNodeWire{
		ID:          n.ID,
		Label:       n.Label,
		IsLoading:   n.State == ChildrenFetching,
		HasChildren: n.HasChildren(),
	}
	if n.State == ChildrenFetched || len(n.Children) > 0 {
		children := n.Children
		if children == nil {
			children = []TreeNode{}
		}
		w.Children = &children
	}
	return json.Marshal(w)
}

func (n *TreeNode) UnmarshalJSON(data []byte) error {
	var w treeNodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	n.ID = w.ID
	n.Label = w.Label
	n.Children = nil
	if w.Children != nil {
		n.Children = *w.Children
	}

	switch {
	case w.IsLoading:
		n.State = ChildrenFetching
	case w.Children != nil:
		n.State = ChildrenFetched
	case w.HasChildren:
		n.State = ChildrenNotFetched
	default:
		n.State = ChildrenFetched
		n.Children = []TreeNode{}
	}
	return nil
}

// CloneForest returns a deep copy of nodes.
func CloneForest(nodes []TreeNode) []TreeNode {
	if nodes == nil {
		return nil
	}
	out := make([]TreeNode, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Children = CloneForest(n.Children)
	}
	return out
}
