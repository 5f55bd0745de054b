// Package persist saves and restores the board and the tree through a
// key-value store. Loading never fails: anything missing or unreadable falls
// back to the seed data. Saving failures are logged and otherwise ignored.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexanderramin/kanbantree/internal/board"
	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
	"github.com/alexanderramin/kanbantree/internal/repository"
	"github.com/alexanderramin/kanbantree/internal/seed"
)

// BoardStore persists the board as one JSON document.
type BoardStore struct {
	kv        repository.KVStore
	key       string
	ids       *idgen.Generator
	indicator *SavedIndicator
	log       *zap.Logger
}

// BoardOption configures a BoardStore.
type BoardOption func(*BoardStore)

// WithBoardKey overrides the storage key.
func WithBoardKey(key string) BoardOption {
	return func(s *BoardStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithBoardIndicator raises ind after every successful save.
func WithBoardIndicator(ind *SavedIndicator) BoardOption {
	return func(s *BoardStore) { s.indicator = ind }
}

// NewBoardStore returns a store that re-seeds ids from whatever it loads.
func NewBoardStore(kv repository.KVStore, ids *idgen.Generator, log *zap.Logger, opts ...BoardOption) *BoardStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &BoardStore{kv: kv, key: seed.BoardKey, ids: ids, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Saved reports whether a save succeeded within the indicator window.
func (s *BoardStore) Saved() bool {
	return s.indicator.Visible()
}

// Key returns the storage key.
func (s *BoardStore) Key() string {
	return s.key
}

// Load returns the persisted board, or the seed board if there is none or it
// cannot be used. The card id generator is advanced past every loaded id.
func (s *BoardStore) Load(ctx context.Context) domain.Columns {
	cols, err := s.read(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Falling back to seed board", zap.String("key", s.key), zap.Error(err))
		}
		cols = seed.Board()
	}
	if s.ids != nil {
		s.ids.SeedFrom(board.CardIDs(cols))
	}
	return cols
}

func (s *BoardStore) read(ctx context.Context) (domain.Columns, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	var cols domain.Columns
	if err := json.Unmarshal([]byte(raw), &cols); err != nil {
		return nil, fmt.Errorf("decoding board: %w", err)
	}
	for i := range cols {
		if cols[i].Cards == nil {
			cols[i].Cards = []domain.Card{}
		}
	}
	if err := board.Validate(cols); err != nil {
		return nil, fmt.Errorf("validating board: %w", err)
	}
	return cols, nil
}

// Save writes cols. A failed write is logged and returned, and the board in
// memory stays authoritative either way.
func (s *BoardStore) Save(ctx context.Context, cols domain.Columns) error {
	data, err := json.Marshal(cols)
	if err != nil {
		s.log.Error("Encoding board failed", zap.Error(err))
		return fmt.Errorf("encoding board: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.log.Warn("Saving board failed", zap.String("key", s.key), zap.Error(err))
		return err
	}
	s.indicator.Mark()
	s.log.Debug("Board saved", zap.String("key", s.key), zap.Int("cards", cols.TotalCards()))
	return nil
}

// Reset forgets the persisted board and returns a fresh seed board.
func (s *BoardStore) Reset(ctx context.Context) domain.Columns {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.log.Warn("Clearing board failed", zap.String("key", s.key), zap.Error(err))
	}
	return seed.Board()
}
