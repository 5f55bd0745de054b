// Package board implements pure transforms over the kanban column collection.
// Every function returns a new domain.Columns and leaves its input untouched;
// columns that do not change share their card slices with the input.
package board

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
)

// Target is a drop zone on the board: a column, optionally narrowed to the
// card the pointer is over.
type Target struct {
	ColumnID domain.ColumnID
	CardID   string
}

// AddCard appends a new card with a fresh id to the end of columnID.
// It reports false and returns cols unchanged if the column does not exist.
func AddCard(cols domain.Columns, ids idgen.Source, columnID domain.ColumnID, title, description string) (domain.Columns, domain.Card, bool) {
	idx := columnIndex(cols, columnID)
	if idx == -1 {
		return cols, domain.Card{}, false
	}
	card := domain.Card{
		ID:          ids.Next(),
		Title:       title,
		Description: description,
		ColumnID:    columnID,
	}
	out := slices.Clone(cols)
	out[idx].Cards = appendCard(cols[idx].Cards, card)
	return out, card, true
}

// UpdateCard replaces the title of cardID, leaving its description alone.
func UpdateCard(cols domain.Columns, cardID, title string) domain.Columns {
	ci, ki := locate(cols, cardID)
	if ci == -1 {
		return cols
	}
	out := slices.Clone(cols)
	cards := slices.Clone(cols[ci].Cards)
	cards[ki].Title = title
	out[ci].Cards = cards
	return out
}

// DeleteCard removes cardID from whichever column holds it.
func DeleteCard(cols domain.Columns, cardID string) domain.Columns {
	ci, ki := locate(cols, cardID)
	if ci == -1 {
		return cols
	}
	out := slices.Clone(cols)
	out[ci].Cards = without(cols[ci].Cards, ki)
	return out
}

// MoveCard moves dragged into targetColumnID. With a targetCardID the card
// lands immediately before that card; without one, or when that card is not
// in the target column once dragged has been lifted out, it is appended.
//
// Dropping on the empty area of the card's own column, dropping a card on
// itself, naming an unknown column, or dragging a card that is no longer on
// the board all leave cols unchanged.
func MoveCard(cols domain.Columns, dragged domain.Card, targetColumnID domain.ColumnID, targetCardID string) domain.Columns {
	if dragged.ColumnID == targetColumnID && targetCardID == "" {
		return cols
	}
	if targetCardID == dragged.ID {
		return cols
	}
	ti := columnIndex(cols, targetColumnID)
	if ti == -1 {
		return cols
	}
	ci, ki := locate(cols, dragged.ID)
	if ci == -1 {
		return cols
	}

	// The stored card is authoritative; dragged may be a stale snapshot.
	moved := cols[ci].Cards[ki]
	moved.ColumnID = targetColumnID

	out := slices.Clone(cols)
	out[ci].Cards = without(cols[ci].Cards, ki)

	target := out[ti].Cards
	pos := len(target)
	if targetCardID != "" {
		if j := cardIndex(target, targetCardID); j != -1 {
			pos = j
		}
	}
	cards := make([]domain.Card, 0, len(target)+1)
	cards = append(cards, target[:pos]...)
	cards = append(cards, moved)
	cards = append(cards, target[pos:]...)
	out[ti].Cards = cards
	return out
}

// FindCard returns the card with the given id.
func FindCard(cols domain.Columns, cardID string) (domain.Card, bool) {
	ci, ki := locate(cols, cardID)
	if ci == -1 {
		return domain.Card{}, false
	}
	return cols[ci].Cards[ki], true
}

// CardIDs lists every card id in column order.
func CardIDs(cols domain.Columns) []string {
	var ids []string
	for _, col := range cols {
		for _, c := range col.Cards {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Validate checks the board invariants: the three fixed columns in order,
// every card filed under the column it names, and no card id repeated.
func Validate(cols domain.Columns) error {
	if len(cols) != len(domain.ColumnOrder) {
		return fmt.Errorf("board has %d columns, want %d", len(cols), len(domain.ColumnOrder))
	}
	seen := make(map[string]domain.ColumnID)
	for i, col := range cols {
		if col.ID != domain.ColumnOrder[i] {
			return fmt.Errorf("column %d is %q, want %q", i, col.ID, domain.ColumnOrder[i])
		}
		for _, c := range col.Cards {
			if c.ID == "" {
				return fmt.Errorf("card %q in column %q has an empty id", c.Title, col.ID)
			}
			if c.ColumnID != col.ID {
				return fmt.Errorf("card %s says column %q but sits in %q", c.ID, c.ColumnID, col.ID)
			}
			if prev, dup := seen[c.ID]; dup {
				return fmt.Errorf("card %s appears in both %q and %q", c.ID, prev, col.ID)
			}
			seen[c.ID] = col.ID
		}
	}
	return nil
}

func columnIndex(cols domain.Columns, id domain.ColumnID) int {
	return slices.IndexFunc(cols, func(c domain.Column) bool { return c.ID == id })
}

func cardIndex(cards []domain.Card, id string) int {
	return slices.IndexFunc(cards, func(c domain.Card) bool { return c.ID == id })
}

func locate(cols domain.Columns, cardID string) (int, int) {
	for ci, col := range cols {
		if ki := cardIndex(col.Cards, cardID); ki != -1 {
			return ci, ki
		}
	}
	return -1, -1
}

func appendCard(cards []domain.Card, card domain.Card) []domain.Card {
	out := make([]domain.Card, 0, len(cards)+1)
	out = append(out, cards...)
	return append(out, card)
}

func without(cards []domain.Card, idx int) []domain.Card {
	out := make([]domain.Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	return append(out, cards[idx+1:]...)
}
