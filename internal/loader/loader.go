// Package loader drives the lazy fetch lifecycle of tree nodes:
// NotFetched, then Fetching, then Fetched. It never owns the forest. Callers
// pass the current forest in and store the forest that comes back.
package loader

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/tree"
)

// StalePolicy decides what happens to a fetch result whose node has changed
// since the fetch began.
type StalePolicy uint8

const (
	// DiscardStale applies a result only while its ticket is still current and
	// the node is still loading.
	DiscardStale StalePolicy = iota
	// ReviveStale applies a result to whichever node carries the id, whatever
	// its state.
	ReviveStale
)

func (p StalePolicy) String() string {
	switch p {
	case DiscardStale:
		return "discard"
	case ReviveStale:
		return "revive"
	default:
		return fmt.Sprintf("StalePolicy(%d)", uint8(p))
	}
}

// ParseStalePolicy parses "discard" or "revive".
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard":
		return DiscardStale, nil
	case "revive":
		return ReviveStale, nil
	default:
		return DiscardStale, fmt.Errorf("unknown stale policy %q (want discard or revive)", s)
	}
}

// Ticket identifies one fetch of one node.
type Ticket struct {
	NodeID string
	Token  string
}

// Loader hands out tickets and applies fetch results. It is safe for
// concurrent use.
type Loader struct {
	fetcher Fetcher
	policy  StalePolicy
	group   singleflight.Group

	mu      sync.Mutex
	pending map[string]string
}

// New returns a Loader fetching through f.
func New(f Fetcher, policy StalePolicy) *Loader {
	return &Loader{
		fetcher: f,
		policy:  policy,
		pending: make(map[string]string),
	}
}

// Policy returns the stale-result policy.
func (l *Loader) Policy() StalePolicy {
	return l.policy
}

// Begin marks id as fetching and returns a ticket for the fetch. It returns
// false, and the input forest, unless the node exists and was never fetched.
func (l *Loader) Begin(forest []domain.TreeNode, id string) ([]domain.TreeNode, Ticket, bool) {
	n, ok := tree.Find(forest, id)
	if !ok || !n.NeedsFetch() {
		return forest, Ticket{}, false
	}
	t := Ticket{NodeID: id, Token: uuid.NewString()}
	l.mu.Lock()
	l.pending[id] = t.Token
	l.mu.Unlock()
	return tree.Update(forest, id, tree.MarkFetching()), t, true
}

// Fetch runs the fetch for t. Concurrent fetches of the same node share one
// call to the underlying Fetcher; each caller gets its own copy of the result.
func (l *Loader) Fetch(ctx context.Context, t Ticket) ([]domain.TreeNode, error) {
	ch := l.group.DoChan(t.NodeID, func() (any, error) {
		return l.fetcher.FetchChildren(ctx, t.NodeID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("fetch children of %s: %w", t.NodeID, res.Err)
		}
		kids, _ := res.Val.([]domain.TreeNode)
		return domain.CloneForest(kids), nil
	}
}

// Resolve applies fetched children for t. Children added locally while the
// fetch was in flight are kept after the fetched ones, and fetched nodes whose
// ids already exist elsewhere in the forest are skipped. It reports whether
// the forest changed.
func (l *Loader) Resolve(forest []domain.TreeNode, t Ticket, children []domain.TreeNode) ([]domain.TreeNode, bool) {
	n, ok := l.claim(forest, t)
	if !ok {
		return forest, false
	}

	local := []domain.TreeNode{}
	if n.IsLoading() {
		local = n.Children
	}
	rest := tree.Update(forest, t.NodeID, tree.Patch{Children: &local})

	merged := make([]domain.TreeNode, 0, len(children)+len(local))
	for _, c := range children {
		if !collides(rest, c) {
			merged = append(merged, c)
		}
	}
	merged = append(merged, local...)
	return tree.Update(forest, t.NodeID, tree.WithFetchedChildren(merged)), true
}

// Fail undoes Begin after a failed fetch so a later expand retries. A node
// that gained local children while loading keeps them and counts as fetched.
func (l *Loader) Fail(forest []domain.TreeNode, t Ticket) ([]domain.TreeNode, bool) {
	n, ok := l.claim(forest, t)
	if !ok || !n.IsLoading() {
		return forest, false
	}
	if len(n.Children) > 0 {
		return tree.Update(forest, t.NodeID, tree.WithFetchedChildren(n.Children)), true
	}
	return tree.Update(forest, t.NodeID, tree.MarkNotFetched()), true
}

// Invalidate forgets every outstanding ticket. Call it when the forest is
// replaced wholesale.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	clear(l.pending)
	l.mu.Unlock()
}

// Pending reports whether a fetch ticket for id is outstanding.
func (l *Loader) Pending(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[id]
	return ok
}

// claim retires t and returns the node it should be applied to.
func (l *Loader) claim(forest []domain.TreeNode, t Ticket) (domain.TreeNode, bool) {
	l.mu.Lock()
	current := l.pending[t.NodeID] == t.Token
	if current {
		delete(l.pending, t.NodeID)
	}
	l.mu.Unlock()

	n, found := tree.Find(forest, t.NodeID)
	if !found {
		return domain.TreeNode{}, false
	}
	if l.policy == ReviveStale {
		return n, true
	}
	return n, current && n.IsLoading()
}

func collides(forest []domain.TreeNode, n domain.TreeNode) bool {
	for _, id := range tree.IDs([]domain.TreeNode{n}) {
		if tree.Contains(forest, id) {
			return true
		}
	}
	return false
}
