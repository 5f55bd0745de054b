package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/alexanderramin/kanbantree/internal/dnd"
	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
	"github.com/alexanderramin/kanbantree/internal/loader"
	"github.com/alexanderramin/kanbantree/internal/tree"
)

// TreeStore is the persistence the tree service writes through.
type TreeStore interface {
	Load(ctx context.Context) []domain.TreeNode
	Save(ctx context.Context, forest []domain.TreeNode) error
	Reset(ctx context.Context) []domain.TreeNode
	Saved() bool
}

// Load tracks one background fetch started by Toggle.
type Load struct {
	NodeID string

	done chan struct{}
	err  error
}

// Done is closed once the fetch result has been applied or discarded.
func (l *Load) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the fetch has landed and returns its error, if any.
func (l *Load) Wait() error {
	<-l.done
	return l.err
}

type treeService struct {
	store    TreeStore
	ids      idgen.Source
	loader   *loader.Loader
	log      *zap.Logger
	observer UseCaseObserver

	mu       sync.Mutex
	forest   []domain.TreeNode
	rev      uint64
	expanded map[string]bool
	drag     dnd.Session[string]

	inflight sync.WaitGroup
}

// NewTreeService loads the forest from store. ids must be the generator the
// store re-seeds on load.
func NewTreeService(ctx context.Context, store TreeStore, ids idgen.Source, ld *loader.Loader, log *zap.Logger, observers ...UseCaseObserver) TreeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &treeService{
		store:    store,
		ids:      ids,
		loader:   ld,
		log:      log,
		observer: useCaseObserverOrNoop(observers),
		forest:   store.Load(ctx),
		expanded: make(map[string]bool),
	}
}

func (s *treeService) Forest() []domain.TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneForest(s.forest)
}

func (s *treeService) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *treeService) Saved() bool {
	return s.store.Saved()
}

func (s *treeService) Rename(ctx context.Context, id, label string) (err error) {
	defer observe(ctx, s.observer, "rename-node", map[string]any{"node": id})(&err)

	label, err = domain.NormalizeLabel(label)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := tree.Find(s.forest, id)
	if !ok {
		return domain.ErrNodeNotFound
	}
	if n.Label == label {
		return nil
	}
	s.commit(ctx, tree.Update(s.forest, id, tree.WithLabel(label)))
	return nil
}

func (s *treeService) Delete(ctx context.Context, id string) (err error) {
	fields := map[string]any{"node": id}
	defer observe(ctx, s.observer, "delete-node", fields)(&err)

	s.mu.Lock()
	defer s.mu.Unlock()
	gone := tree.SubtreeIDs(s.forest, id)
	if gone == nil {
		return domain.ErrNodeNotFound
	}
	fields["removed"] = len(gone)
	for _, g := range gone {
		delete(s.expanded, g)
		if s.drag.IsDragging(g) {
			s.drag.End()
		}
	}
	s.commit(ctx, tree.Delete(s.forest, id))
	return nil
}

func (s *treeService) AddChild(ctx context.Context, parentID, label string) (node domain.TreeNode, err error) {
	fields := map[string]any{"parent": parentID}
	defer observe(ctx, s.observer, "add-child", fields)(&err)

	label, err = domain.NormalizeLabel(label)
	if err != nil {
		return domain.TreeNode{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !tree.Contains(s.forest, parentID) {
		return domain.TreeNode{}, domain.ErrNodeNotFound
	}
	node = domain.NewLeaf(s.ids.Next(), label)
	fields["node"] = node.ID
	s.expanded[parentID] = true
	s.commit(ctx, tree.AddChild(s.forest, parentID, node))
	return node, nil
}

func (s *treeService) AddRoot(ctx context.Context, label string) (node domain.TreeNode, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "add-root", fields)(&err)

	label, err = domain.NormalizeLabel(label)
	if err != nil {
		return domain.TreeNode{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	node = domain.NewLeaf(s.ids.Next(), label)
	fields["node"] = node.ID
	s.commit(ctx, tree.AddRoot(s.forest, node))
	return node, nil
}

// MoveAfter performs a whole drag in one call, for callers without pointer
// events such as the CLI.
func (s *treeService) MoveAfter(ctx context.Context, draggedID, targetID string) (err error) {
	defer observe(ctx, s.observer, "move-node", map[string]any{"node": draggedID, "after": targetID})(&err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !tree.Contains(s.forest, draggedID) || !tree.Contains(s.forest, targetID) {
		return domain.ErrNodeNotFound
	}
	s.moveLocked(ctx, draggedID, targetID)
	return nil
}

func (s *treeService) Reset(ctx context.Context) []domain.TreeNode {
	defer observe(ctx, s.observer, "reset-tree", nil)(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loader.Invalidate()
	s.drag.End()
	clear(s.expanded)
	s.forest = s.store.Reset(ctx)
	s.rev++
	return domain.CloneForest(s.forest)
}

// Toggle flips the expansion of id. Expanding a node whose children were
// never fetched starts a background fetch and returns a handle for it;
// otherwise the returned Load is nil. Leaves cannot be expanded.
func (s *treeService) Toggle(ctx context.Context, id string) (*Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := tree.Find(s.forest, id)
	if !ok {
		return nil, domain.ErrNodeNotFound
	}
	if s.expanded[id] {
		delete(s.expanded, id)
		return nil, nil
	}
	if !n.HasChildren() {
		return nil, nil
	}
	s.expanded[id] = true

	next, ticket, ok := s.loader.Begin(s.forest, id)
	if !ok {
		return nil, nil
	}
	s.forest = next
	s.rev++

	load := &Load{NodeID: id, done: make(chan struct{})}
	s.inflight.Add(1)
	go s.fetch(context.WithoutCancel(ctx), ticket, load)
	return load, nil
}

func (s *treeService) fetch(ctx context.Context, ticket loader.Ticket, load *Load) {
	defer s.inflight.Done()
	defer close(load.done)

	var err error
	defer observe(ctx, s.observer, "fetch-children", map[string]any{"node": ticket.NodeID})(&err)

	var children []domain.TreeNode
	children, err = s.loader.Fetch(ctx, ticket)

	s.mu.Lock()
	defer s.mu.Unlock()

	var next []domain.TreeNode
	var changed bool
	if err != nil {
		load.err = err
		s.log.Warn("Fetching children failed", zap.String("node", ticket.NodeID), zap.Error(err))
		next, changed = s.loader.Fail(s.forest, ticket)
		if n, ok := tree.Find(next, ticket.NodeID); ok && n.NeedsFetch() {
			delete(s.expanded, ticket.NodeID)
		}
	} else {
		next, changed = s.loader.Resolve(s.forest, ticket, children)
	}
	if !changed {
		s.log.Debug("Discarded stale fetch result",
			zap.String("node", ticket.NodeID),
			zap.Stringer("policy", s.loader.Policy()))
		return
	}
	s.commit(ctx, next)
}

func (s *treeService) Expanded(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[id]
}

func (s *treeService) DragStart(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !tree.Contains(s.forest, id) {
		return false
	}
	s.drag.Start(id)
	return true
}

func (s *treeService) DragOver(path ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drag.Dragging(); !ok {
		return
	}
	s.drag.Over(path...)
}

func (s *treeService) Drop(ctx context.Context, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Drop(targetID, func(draggedID, target string) {
		s.moveLocked(ctx, draggedID, target)
	})
}

func (s *treeService) DragEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.End()
}

func (s *treeService) Dragging() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Dragging()
}

func (s *treeService) OverNode() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Target()
}

func (s *treeService) Close() {
	s.inflight.Wait()
}

func (s *treeService) moveLocked(ctx context.Context, draggedID, targetID string) {
	next := tree.MoveAfter(s.forest, draggedID, targetID)
	if sameSlice(next, s.forest) {
		return
	}
	s.commit(ctx, next)
}

// commit installs next as the current revision and saves it. Callers hold mu.
func (s *treeService) commit(ctx context.Context, next []domain.TreeNode) {
	s.forest = next
	s.rev++
	_ = s.store.Save(ctx, next)
}
