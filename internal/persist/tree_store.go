package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
	"github.com/alexanderramin/kanbantree/internal/repository"
	"github.com/alexanderramin/kanbantree/internal/seed"
	"github.com/alexanderramin/kanbantree/internal/tree"
)

// TreeStore persists the forest as one JSON document. A node caught
// mid-fetch is stored as not yet fetched, so the fetch is retried on the next
// expand instead of spinning forever.
type TreeStore struct {
	kv        repository.KVStore
	key       string
	ids       *idgen.Generator
	indicator *SavedIndicator
	log       *zap.Logger
}

// TreeOption configures a TreeStore.
type TreeOption func(*TreeStore)

func WithTreeKey(key string) TreeOption {
	return func(s *TreeStore) {
		if key != "" {
			s.key = key
		}
	}
}

func WithTreeIndicator(ind *SavedIndicator) TreeOption {
	return func(s *TreeStore) { s.indicator = ind }
}

func NewTreeStore(kv repository.KVStore, ids *idgen.Generator, log *zap.Logger, opts ...TreeOption) *TreeStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &TreeStore{kv: kv, key: seed.TreeKey, ids: ids, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Saved reports whether a save succeeded within the indicator window.
func (s *TreeStore) Saved() bool {
	return s.indicator.Visible()
}

func (s *TreeStore) Key() string {
	return s.key
}

// Load returns the persisted forest or the seed forest.
func (s *TreeStore) Load(ctx context.Context) []domain.TreeNode {
	forest, err := s.read(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Falling back to seed tree", zap.String("key", s.key), zap.Error(err))
		}
		forest = seed.Forest()
	}
	if s.ids != nil {
		s.ids.SeedFrom(tree.IDs(forest))
	}
	return forest
}

func (s *TreeStore) read(ctx context.Context) ([]domain.TreeNode, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	var forest []domain.TreeNode
	if err := json.Unmarshal([]byte(raw), &forest); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	if err := tree.Validate(forest); err != nil {
		return nil, fmt.Errorf("validating tree: %w", err)
	}
	return settle(forest), nil
}

// Save writes forest with any in-flight fetches rolled back.
func (s *TreeStore) Save(ctx context.Context, forest []domain.TreeNode) error {
	data, err := json.Marshal(settle(forest))
	if err != nil {
		s.log.Error("Encoding tree failed", zap.Error(err))
		return fmt.Errorf("encoding tree: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.log.Warn("Saving tree failed", zap.String("key", s.key), zap.Error(err))
		return err
	}
	s.indicator.Mark()
	s.log.Debug("Tree saved", zap.String("key", s.key))
	return nil
}

// Reset forgets the persisted forest and returns a fresh seed forest.
func (s *TreeStore) Reset(ctx context.Context) []domain.TreeNode {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.log.Warn("Clearing tree failed", zap.String("key", s.key), zap.Error(err))
	}
	return seed.Forest()
}

// settle rewrites loading nodes: those with locally added children become
// fetched, the rest return to not fetched.
func settle(forest []domain.TreeNode) []domain.TreeNode {
	return tree.Map(forest, func(n domain.TreeNode) domain.TreeNode {
		if !n.IsLoading() {
			return n
		}
		if len(n.Children) > 0 {
			n.State = domain.ChildrenFetched
		} else {
			n.State = domain.ChildrenNotFetched
			n.Children = nil
		}
		return n
	})
}
