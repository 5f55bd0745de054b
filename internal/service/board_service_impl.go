package service

import (
	"context"
	"sync"

	"github.com/alexanderramin/kanbantree/internal/board"
	"github.com/alexanderramin/kanbantree/internal/dnd"
	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
)

// BoardStore is the persistence the board service writes through.
type BoardStore interface {
	Load(ctx context.Context) domain.Columns
	Save(ctx context.Context, cols domain.Columns) error
	Reset(ctx context.Context) domain.Columns
	Saved() bool
}

type boardService struct {
	store    BoardStore
	ids      idgen.Source
	observer UseCaseObserver

	mu   sync.Mutex
	cols domain.Columns
	rev  uint64
	drag dnd.Session[board.Target]
}

// NewBoardService loads the board from store. ids must be the generator the
// store re-seeds on load.
func NewBoardService(ctx context.Context, store BoardStore, ids idgen.Source, observers ...UseCaseObserver) BoardService {
	return &boardService{
		store:    store,
		ids:      ids,
		observer: useCaseObserverOrNoop(observers),
		cols:     store.Load(ctx),
	}
}

func (s *boardService) Columns() domain.Columns {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols.Clone()
}

func (s *boardService) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *boardService) Saved() bool {
	return s.store.Saved()
}

func (s *boardService) AddCard(ctx context.Context, columnID domain.ColumnID, title, description string) (card domain.Card, err error) {
	fields := map[string]any{"column": string(columnID)}
	defer observe(ctx, s.observer, "add-card", fields)(&err)

	title, err = domain.NormalizeLabel(title)
	if err != nil {
		return domain.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, card, ok := board.AddCard(s.cols, s.ids, columnID, title, trimDescription(description))
	if !ok {
		return domain.Card{}, &domain.UnknownColumnError{ID: string(columnID)}
	}
	fields["card"] = card.ID
	s.commit(ctx, next)
	return card, nil
}

func (s *boardService) EditCard(ctx context.Context, cardID, title string) (err error) {
	defer observe(ctx, s.observer, "edit-card", map[string]any{"card": cardID})(&err)

	title, err = domain.NormalizeLabel(title)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := board.FindCard(s.cols, cardID)
	if !ok {
		return domain.ErrCardNotFound
	}
	if current.Title == title {
		return nil
	}
	s.commit(ctx, board.UpdateCard(s.cols, cardID, title))
	return nil
}

func (s *boardService) DeleteCard(ctx context.Context, cardID string) (err error) {
	defer observe(ctx, s.observer, "delete-card", map[string]any{"card": cardID})(&err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := board.FindCard(s.cols, cardID); !ok {
		return domain.ErrCardNotFound
	}
	if s.drag.IsDragging(cardID) {
		s.drag.End()
	}
	s.commit(ctx, board.DeleteCard(s.cols, cardID))
	return nil
}

// MoveCard performs a whole drag in one call, for callers without pointer
// events such as the CLI.
func (s *boardService) MoveCard(ctx context.Context, cardID string, target board.Target) (err error) {
	fields := map[string]any{"card": cardID, "column": string(target.ColumnID)}
	defer observe(ctx, s.observer, "move-card", fields)(&err)

	if _, err = domain.ParseColumnID(string(target.ColumnID)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := board.FindCard(s.cols, cardID); !ok {
		return domain.ErrCardNotFound
	}
	s.moveLocked(ctx, cardID, target)
	return nil
}

func (s *boardService) Reset(ctx context.Context) domain.Columns {
	defer observe(ctx, s.observer, "reset-board", nil)(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.End()
	s.cols = s.store.Reset(ctx)
	s.rev++
	return s.cols.Clone()
}

func (s *boardService) DragStart(cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := board.FindCard(s.cols, cardID); !ok {
		return false
	}
	s.drag.Start(cardID)
	return true
}

func (s *boardService) DragOver(path ...board.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drag.Dragging(); !ok {
		return
	}
	s.drag.Over(path...)
}

func (s *boardService) Drop(ctx context.Context, target board.Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Drop(target, func(cardID string, t board.Target) {
		s.moveLocked(ctx, cardID, t)
	})
}

func (s *boardService) DragEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.End()
}

func (s *boardService) Dragging() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Dragging()
}

// OverColumn returns the column under the pointer, for highlighting.
func (s *boardService) OverColumn() (domain.ColumnID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.drag.Target()
	return t.ColumnID, ok
}

func (s *boardService) moveLocked(ctx context.Context, cardID string, target board.Target) {
	card, ok := board.FindCard(s.cols, cardID)
	if !ok {
		return
	}
	next := board.MoveCard(s.cols, card, target.ColumnID, target.CardID)
	if sameSlice(next, s.cols) {
		return
	}
	s.commit(ctx, next)
}

// commit installs next as the current revision and saves it. Callers hold mu.
func (s *boardService) commit(ctx context.Context, next domain.Columns) {
	s.cols = next
	s.rev++
	_ = s.store.Save(ctx, next)
}
