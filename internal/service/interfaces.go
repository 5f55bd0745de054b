package service

import (
	"context"

	"github.com/alexanderramin/kanbantree/internal/board"
	"github.com/alexanderramin/kanbantree/internal/domain"
)

// BoardService owns the kanban board. Every committed change is saved before
// the call returns.
type BoardService interface {
	Columns() domain.Columns
	Revision() uint64
	Saved() bool

	AddCard(ctx context.Context, columnID domain.ColumnID, title, description string) (domain.Card, error)
	EditCard(ctx context.Context, cardID, title string) error
	DeleteCard(ctx context.Context, cardID string) error
	MoveCard(ctx context.Context, cardID string, target board.Target) error
	Reset(ctx context.Context) domain.Columns

	DragStart(cardID string) bool
	DragOver(path ...board.Target)
	Drop(ctx context.Context, target board.Target) bool
	DragEnd()
	Dragging() (string, bool)
	OverColumn() (domain.ColumnID, bool)
}

// TreeService owns the forest, its expansion state and background fetches.
type TreeService interface {
	Forest() []domain.TreeNode
	Revision() uint64
	Saved() bool

	Rename(ctx context.Context, id, label string) error
	Delete(ctx context.Context, id string) error
	AddChild(ctx context.Context, parentID, label string) (domain.TreeNode, error)
	AddRoot(ctx context.Context, label string) (domain.TreeNode, error)
	MoveAfter(ctx context.Context, draggedID, targetID string) error
	Reset(ctx context.Context) []domain.TreeNode

	Toggle(ctx context.Context, id string) (*Load, error)
	Expanded(id string) bool

	DragStart(id string) bool
	DragOver(path ...string)
	Drop(ctx context.Context, targetID string) bool
	DragEnd()
	Dragging() (string, bool)
	OverNode() (string, bool)

	// Close waits for in-flight fetches to land.
	Close()
}
