// Package dnd holds the ephemeral drag-and-drop state shared by the tree and
// board widgets. A Session is not part of the persisted model; it only tracks
// what is being dragged and which drop zone the pointer is over.
package dnd

// Session tracks one drag at a time. T is the drop-target type: a node id for
// the tree, a board.Target for the board. The zero value is ready to use.
type Session[T any] struct {
	dragging string
	active   bool

	over    T
	hasOver bool
}

// Start begins dragging id. Starting a new drag while one is active replaces
// it, as if the first had been aborted.
func (s *Session[T]) Start(id string) {
	s.dragging = id
	s.active = true
	s.clearOver()
}

// Over records the drop zones under the pointer, innermost first. The
// innermost zone wins, so a card or node zone shadows the column or parent
// that contains it. With no zones the over-target is cleared.
func (s *Session[T]) Over(path ...T) {
	if len(path) == 0 {
		s.clearOver()
		return
	}
	s.over = path[0]
	s.hasOver = true
}

// Drop resolves the drag onto target. With nothing dragging it does nothing
// and returns false. Otherwise apply runs with the dragged id and the session
// is cleared whether or not apply changed anything.
func (s *Session[T]) Drop(target T, apply func(draggedID string, target T)) bool {
	if !s.active {
		return false
	}
	id := s.dragging
	s.End()
	apply(id, target)
	return true
}

// End clears the session, e.g. when a drag is released outside any zone.
func (s *Session[T]) End() {
	s.dragging = ""
	s.active = false
	s.clearOver()
}

// Dragging returns the id being dragged.
func (s *Session[T]) Dragging() (string, bool) {
	return s.dragging, s.active
}

// Target returns the current over-target.
func (s *Session[T]) Target() (T, bool) {
	return s.over, s.hasOver
}

// IsDragging reports whether id is the entity being dragged.
func (s *Session[T]) IsDragging(id string) bool {
	return s.active && s.dragging == id
}

func (s *Session[T]) clearOver() {
	var zero T
	s.over = zero
	s.hasOver = false
}
