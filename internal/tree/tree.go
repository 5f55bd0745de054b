// Package tree implements pure transforms over a forest of domain.TreeNode.
//
// No function here modifies its input: the path from a root to the changed
// node is copied and every other subtree is shared with the input. When an
// operation finds nothing to change it returns the input slice itself.
package tree

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/kanbantree/internal/domain"
)

// Patch lists the fields Update replaces. Nil fields are left alone.
type Patch struct {
	Label    *string
	State    *domain.ChildState
	Children *[]domain.TreeNode
}

// WithLabel patches only the label.
func WithLabel(label string) Patch {
	return Patch{Label: &label}
}

// MarkFetching flags the node as having a fetch in flight.
func MarkFetching() Patch {
	s := domain.ChildrenFetching
	return Patch{State: &s}
}

// MarkNotFetched returns the node to the lazy state, e.g. after a failed fetch.
func MarkNotFetched() Patch {
	s := domain.ChildrenNotFetched
	return Patch{State: &s}
}

// WithFetchedChildren stores fetched children and clears the loading state.
func WithFetchedChildren(children []domain.TreeNode) Patch {
	s := domain.ChildrenFetched
	if children == nil {
		children = []domain.TreeNode{}
	}
	return Patch{State: &s, Children: &children}
}

func (p Patch) apply(n domain.TreeNode) domain.TreeNode {
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.State != nil {
		n.State = *p.State
	}
	if p.Children != nil {
		n.Children = *p.Children
	}
	return n
}

// Update replaces the fields named by p on the node with the given id.
func Update(nodes []domain.TreeNode, id string, p Patch) []domain.TreeNode {
	out, _ := rewrite(nodes, id, p.apply)
	return out
}

// Delete removes the node with the given id together with its subtree.
func Delete(nodes []domain.TreeNode, id string) []domain.TreeNode {
	out, _, _ := remove(nodes, id)
	return out
}

// AddChild appends child to the children of parentID. A parent that was never
// fetched becomes fetched with child as its only child; a parent that is
// fetching keeps the child alongside whatever the fetch delivers.
func AddChild(nodes []domain.TreeNode, parentID string, child domain.TreeNode) []domain.TreeNode {
	out, _ := rewrite(nodes, parentID, func(p domain.TreeNode) domain.TreeNode {
		children := make([]domain.TreeNode, 0, len(p.Children)+1)
		children = append(children, p.Children...)
		p.Children = append(children, child)
		if p.State == domain.ChildrenNotFetched {
			p.State = domain.ChildrenFetched
		}
		return p
	})
	return out
}

// AddRoot appends node at the end of the root level.
func AddRoot(nodes []domain.TreeNode, node domain.TreeNode) []domain.TreeNode {
	out := make([]domain.TreeNode, 0, len(nodes)+1)
	out = append(out, nodes...)
	return append(out, node)
}

// MoveAfter splices the dragged subtree out of the forest and reinserts it as
// the sibling immediately after targetID. If the target does not survive the
// removal (it lived inside the dragged subtree, or never existed) the subtree
// is appended to the root level instead of being lost.
func MoveAfter(nodes []domain.TreeNode, draggedID, targetID string) []domain.TreeNode {
	if draggedID == targetID {
		return nodes
	}
	without, dragged, ok := remove(nodes, draggedID)
	if !ok {
		return nodes
	}
	if out, ok := insertAfter(without, targetID, dragged); ok {
		return out
	}
	return AddRoot(without, dragged)
}

// Find returns the node with the given id.
func Find(nodes []domain.TreeNode, id string) (domain.TreeNode, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if found, ok := Find(n.Children, id); ok {
			return found, true
		}
	}
	return domain.TreeNode{}, false
}

// Contains reports whether id is present anywhere in the forest.
func Contains(nodes []domain.TreeNode, id string) bool {
	_, ok := Find(nodes, id)
	return ok
}

// Walk visits every node depth-first, parents before children. Root depth is 0.
func Walk(nodes []domain.TreeNode, fn func(n domain.TreeNode, depth int)) {
	walk(nodes, 0, fn)
}

func walk(nodes []domain.TreeNode, depth int, fn func(n domain.TreeNode, depth int)) {
	for _, n := range nodes {
		fn(n, depth)
		walk(n.Children, depth+1, fn)
	}
}

// IDs lists every id in the forest in depth-first order.
func IDs(nodes []domain.TreeNode) []string {
	var ids []string
	Walk(nodes, func(n domain.TreeNode, _ int) {
		ids = append(ids, n.ID)
	})
	return ids
}

// SubtreeIDs lists id and every descendant id. It returns nil if id is absent.
func SubtreeIDs(nodes []domain.TreeNode, id string) []string {
	n, ok := Find(nodes, id)
	if !ok {
		return nil
	}
	return IDs([]domain.TreeNode{n})
}

// Map rebuilds the whole forest, applying fn to each node before descending
// into the children fn returns.
func Map(nodes []domain.TreeNode, fn func(domain.TreeNode) domain.TreeNode) []domain.TreeNode {
	if nodes == nil {
		return nil
	}
	out := make([]domain.TreeNode, len(nodes))
	for i, n := range nodes {
		n = fn(n)
		n.Children = Map(n.Children, fn)
		out[i] = n
	}
	return out
}

// DuplicateIDError reports an id that appears more than once in a forest.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node id %q", e.ID)
}

// Validate checks that ids are non-empty and unique across the forest.
func Validate(nodes []domain.TreeNode) error {
	seen := make(map[string]bool)
	var err error
	Walk(nodes, func(n domain.TreeNode, _ int) {
		if err != nil {
			return
		}
		if n.ID == "" {
			err = fmt.Errorf("node %q has an empty id", n.Label)
			return
		}
		if seen[n.ID] {
			err = &DuplicateIDError{ID: n.ID}
			return
		}
		seen[n.ID] = true
	})
	return err
}

func rewrite(nodes []domain.TreeNode, id string, fn func(domain.TreeNode) domain.TreeNode) ([]domain.TreeNode, bool) {
	for i, n := range nodes {
		if n.ID == id {
			out := slices.Clone(nodes)
			out[i] = fn(n)
			return out, true
		}
		if children, ok := rewrite(n.Children, id, fn); ok {
			out := slices.Clone(nodes)
			out[i].Children = children
			return out, true
		}
	}
	return nodes, false
}

func remove(nodes []domain.TreeNode, id string) ([]domain.TreeNode, domain.TreeNode, bool) {
	for i, n := range nodes {
		if n.ID == id {
			out := make([]domain.TreeNode, 0, len(nodes)-1)
			out = append(out, nodes[:i]...)
			out = append(out, nodes[i+1:]...)
			return out, n, true
		}
		if children, removed, ok := remove(n.Children, id); ok {
			out := slices.Clone(nodes)
			out[i].Children = children
			return out, removed, true
		}
	}
	return nodes, domain.TreeNode{}, false
}

func insertAfter(nodes []domain.TreeNode, targetID string, node domain.TreeNode) ([]domain.TreeNode, bool) {
	if idx := slices.IndexFunc(nodes, func(n domain.TreeNode) bool { return n.ID == targetID }); idx != -1 {
		out := make([]domain.TreeNode, 0, len(nodes)+1)
		out = append(out, nodes[:idx+1]...)
		out = append(out, node)
		out = append(out, nodes[idx+1:]...)
		return out, true
	}
	for i, n := range nodes {
		if children, ok := insertAfter(n.Children, targetID, node); ok {
			out := slices.Clone(nodes)
			out[i].Children = children
			return out, true
		}
	}
	return nodes, false
}
