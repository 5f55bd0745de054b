package dnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zone struct {
	column string
	card   string
}

func TestSession_DropWithoutDragIsNoop(t *testing.T) {
	var s Session[string]
	called := false
	ok := s.Drop("target", func(string, string) { called = true })
	assert.False(t, ok)
	assert.False(t, called)
}

func TestSession_DropAppliesAndClears(t *testing.T) {
	var s Session[string]
	s.Start("n1")
	s.Over("n2")

	var gotDragged, gotTarget string
	ok := s.Drop("n2", func(dragged, target string) {
		gotDragged, gotTarget = dragged, target
	})

	require.True(t, ok)
	assert.Equal(t, "n1", gotDragged)
	assert.Equal(t, "n2", gotTarget)

	_, dragging := s.Dragging()
	_, over := s.Target()
	assert.False(t, dragging)
	assert.False(t, over)
}

func TestSession_DropClearsEvenWhenApplyChangesNothing(t *testing.T) {
	var s Session[string]
	s.Start("n1")
	s.Over("n1")
	s.Drop("n1", func(string, string) {})

	_, dragging := s.Dragging()
	assert.False(t, dragging)
}

func TestSession_InnermostZoneWins(t *testing.T) {
	var s Session[zone]
	s.Start("card-1")

	s.Over(zone{column: "done", card: "card-9"}, zone{column: "done"})
	got, ok := s.Target()
	require.True(t, ok)
	assert.Equal(t, "card-9", got.card)

	s.Over(zone{column: "todo"})
	got, _ = s.Target()
	assert.Equal(t, zone{column: "todo"}, got)
}

func TestSession_OverWithNoZonesClears(t *testing.T) {
	var s Session[string]
	s.Start("a")
	s.Over("b")
	s.Over()
	_, ok := s.Target()
	assert.False(t, ok)
}

func TestSession_EndClearsEverything(t *testing.T) {
	var s Session[string]
	s.Start("a")
	s.Over("b")
	s.End()

	assert.False(t, s.IsDragging("a"))
	_, ok := s.Target()
	assert.False(t, ok)
}

func TestSession_StartReplacesActiveDrag(t *testing.T) {
	var s Session[string]
	s.Start("a")
	s.Over("x")
	s.Start("b")

	id, ok := s.Dragging()
	require.True(t, ok)
	assert.Equal(t, "b", id)
	assert.False(t, s.IsDragging("a"))
	_, over := s.Target()
	assert.False(t, over)
}
