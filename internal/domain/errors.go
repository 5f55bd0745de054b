package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyLabel is returned when a label or title is empty after trimming.
// The edit is abandoned and the previous value kept.
var ErrEmptyLabel = errors.New("label must not be empty")

// UnknownColumnError reports a column id outside the fixed board columns.
type UnknownColumnError struct {
	ID string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (want todo|inprogress|done)", e.ID)
}

// NormalizeLabel trims surrounding whitespace and rejects empty results.
func NormalizeLabel(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyLabel
	}
	return s, nil
}

// ErrCardNotFound is returned when a card id is not on the board.
var ErrCardNotFound = errors.New("card not found")

// ErrNodeNotFound is returned when a node id is not in the forest.
var ErrNodeNotFound = errors.New("node not found")
