package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexanderramin/kanbantree/internal/board"
	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
	"github.com/alexanderramin/kanbantree/internal/persist"
	"github.com/alexanderramin/kanbantree/internal/repository"
	"github.com/alexanderramin/kanbantree/internal/seed"
	"github.com/alexanderramin/kanbantree/internal/testutil"
)

func TestBoardService_StartsFromSeed(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	assert.Equal(t, seed.Board(), svc.Columns())
	assert.Equal(t, uint64(0), svc.Revision())
}

func TestBoardService_AddCardPersists(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	svc, obs := setupBoard(t, kv)
	ctx := context.Background()

	card, err := svc.AddCard(ctx, domain.ColumnTodo, "  Write docs ", " later ")
	require.NoError(t, err)
	assert.Equal(t, "card-201", card.ID)
	assert.Equal(t, "Write docs", card.Title)
	assert.Equal(t, "later", card.Description)
	assert.Equal(t, []string{"card-1", "card-2", "card-3", "card-9", "card-10", "card-11", "card-12", "card-201"},
		testutil.ColumnCardIDs(svc.Columns(), domain.ColumnTodo))

	raw, err := kv.Get(ctx, seed.BoardKey)
	require.NoError(t, err)
	var saved domain.Columns
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.Equal(t, svc.Columns(), saved)

	assert.Equal(t, "add-card", obs.last().Name)
	assert.Equal(t, "card-201", obs.last().Fields["card"])
}

func TestBoardService_AddCardRejects(t *testing.T) {
	svc, obs := setupBoard(t, nil)
	ctx := context.Background()

	_, err := svc.AddCard(ctx, domain.ColumnTodo, "   ", "")
	assert.ErrorIs(t, err, domain.ErrEmptyLabel)

	_, err = svc.AddCard(ctx, "backlog", "x", "")
	var unknown *domain.UnknownColumnError
	assert.ErrorAs(t, err, &unknown)

	assert.Equal(t, uint64(0), svc.Revision())
	assert.False(t, obs.last().Success)
}

func TestBoardService_ReloadContinuesIDs(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	ctx := context.Background()

	first, _ := setupBoard(t, kv)
	_, err := first.AddCard(ctx, domain.ColumnDone, "a", "")
	require.NoError(t, err)
	_, err = first.AddCard(ctx, domain.ColumnDone, "b", "")
	require.NoError(t, err)

	second, _ := setupBoard(t, kv)
	card, err := second.AddCard(ctx, domain.ColumnDone, "c", "")
	require.NoError(t, err)
	assert.Equal(t, "card-203", card.ID)
}

func TestBoardService_EditCard(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EditCard(ctx, "card-4", "Implement SSO"))
	c, _ := board.FindCard(svc.Columns(), "card-4")
	assert.Equal(t, "Implement SSO", c.Title)
	assert.Equal(t, "OAuth + JWT flow with refresh tokens", c.Description)

	assert.ErrorIs(t, svc.EditCard(ctx, "card-4", " "), domain.ErrEmptyLabel)
	c, _ = board.FindCard(svc.Columns(), "card-4")
	assert.Equal(t, "Implement SSO", c.Title, "blank edit keeps the previous title")

	assert.ErrorIs(t, svc.EditCard(ctx, "card-999", "x"), domain.ErrCardNotFound)
}

func TestBoardService_DeleteCard(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteCard(ctx, "card-7"))
	_, ok := board.FindCard(svc.Columns(), "card-7")
	assert.False(t, ok)
	assert.Equal(t, 16, svc.Columns().TotalCards())
	assert.ErrorIs(t, svc.DeleteCard(ctx, "card-7"), domain.ErrCardNotFound)
}

func TestBoardService_DragDropAcrossColumns(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	ctx := context.Background()

	require.True(t, svc.DragStart("card-1"))
	svc.DragOver(board.Target{ColumnID: domain.ColumnDone, CardID: "card-8"}, board.Target{ColumnID: domain.ColumnDone})
	col, ok := svc.OverColumn()
	require.True(t, ok)
	assert.Equal(t, domain.ColumnDone, col)

	require.True(t, svc.Drop(ctx, board.Target{ColumnID: domain.ColumnDone, CardID: "card-8"}))

	assert.Equal(t, []string{"card-7", "card-1", "card-8", "card-15", "card-16", "card-17"},
		testutil.ColumnCardIDs(svc.Columns(), domain.ColumnDone))
	moved, _ := board.FindCard(svc.Columns(), "card-1")
	assert.Equal(t, domain.ColumnDone, moved.ColumnID)

	_, dragging := svc.Dragging()
	assert.False(t, dragging)
	_, over := svc.OverColumn()
	assert.False(t, over)
	require.NoError(t, board.Validate(svc.Columns()))
}

func TestBoardService_DropOnOwnColumnIsNoop(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	ctx := context.Background()

	svc.DragStart("card-4")
	assert.True(t, svc.Drop(ctx, board.Target{ColumnID: domain.ColumnInProgress}))
	assert.Equal(t, uint64(0), svc.Revision())
	_, dragging := svc.Dragging()
	assert.False(t, dragging)
}

func TestBoardService_DropWithoutDrag(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	assert.False(t, svc.Drop(context.Background(), board.Target{ColumnID: domain.ColumnDone}))
	assert.False(t, svc.DragStart("card-404"))
}

func TestBoardService_DragOverIgnoredWhenIdle(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	svc.DragOver(board.Target{ColumnID: domain.ColumnDone})
	_, ok := svc.OverColumn()
	assert.False(t, ok)
}

func TestBoardService_DeletingDraggedCardEndsDrag(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	ctx := context.Background()

	svc.DragStart("card-2")
	require.NoError(t, svc.DeleteCard(ctx, "card-2"))
	assert.False(t, svc.Drop(ctx, board.Target{ColumnID: domain.ColumnDone}))
}

func TestBoardService_MoveCard(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.MoveCard(ctx, "card-17", board.Target{ColumnID: domain.ColumnTodo, CardID: "card-1"}))
	assert.Equal(t, "card-17", testutil.ColumnCardIDs(svc.Columns(), domain.ColumnTodo)[0])

	assert.ErrorIs(t, svc.MoveCard(ctx, "card-404", board.Target{ColumnID: domain.ColumnTodo}), domain.ErrCardNotFound)
	var unknown *domain.UnknownColumnError
	assert.ErrorAs(t, svc.MoveCard(ctx, "card-1", board.Target{ColumnID: "archive"}), &unknown)
}

func TestBoardService_Reset(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	svc, _ := setupBoard(t, kv)
	ctx := context.Background()

	require.NoError(t, svc.DeleteCard(ctx, "card-1"))
	svc.DragStart("card-2")

	got := svc.Reset(ctx)
	assert.Equal(t, seed.Board(), got)
	assert.Equal(t, seed.Board(), svc.Columns())
	_, dragging := svc.Dragging()
	assert.False(t, dragging)
	_, err := kv.Get(ctx, seed.BoardKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBoardService_SaveFailureKeepsMemoryState(t *testing.T) {
	kv := &testutil.FailingStore{Inner: repository.NewMemoryKVStore(), SetErr: errors.New("quota")}
	svc, _ := setupBoard(t, kv)

	_, err := svc.AddCard(context.Background(), domain.ColumnTodo, "kept", "")
	require.NoError(t, err, "save errors are swallowed")
	assert.Equal(t, 18, svc.Columns().TotalCards())
	assert.Equal(t, int32(1), kv.Sets.Load())
}

func TestBoardService_SavedIndicator(t *testing.T) {
	ind := persist.NewSavedIndicator(30 * time.Millisecond)
	t.Cleanup(ind.Stop)
	ids := idgen.NewCardGenerator()
	store := persist.NewBoardStore(repository.NewMemoryKVStore(), ids, zap.NewNop(), persist.WithBoardIndicator(ind))
	svc := NewBoardService(context.Background(), store, ids)

	assert.False(t, svc.Saved())
	require.NoError(t, svc.EditCard(context.Background(), "card-1", "renamed"))
	assert.True(t, svc.Saved())
	assert.Eventually(t, func() bool { return !svc.Saved() }, time.Second, 5*time.Millisecond)
}

func TestBoardService_ColumnsReturnsCopy(t *testing.T) {
	svc, _ := setupBoard(t, nil)
	cols := svc.Columns()
	cols[0].Cards[0].Title = "mutated"
	c, _ := board.FindCard(svc.Columns(), "card-1")
	assert.Equal(t, "Create initial project plan", c.Title)
}
