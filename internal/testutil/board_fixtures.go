package testutil

import (
	"github.com/alexanderramin/kanbantree/internal/domain"
)

// Card options
type CardOption func(*domain.Card)

func WithDescription(d string) CardOption {
	return func(c *domain.Card) {
		c.Description = d
	}
}

func WithTitle(title string) CardOption {
	return func(c *domain.Card) {
		c.Title = title
	}
}

// NewTestCard builds a card filed under col. The title defaults to "Card <id>".
func NewTestCard(id string, col domain.ColumnID, opts ...CardOption) domain.Card {
	c := domain.Card{ID: id, Title: "Card " + id, ColumnID: col}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewTestColumns builds the three fixed columns, filling each with cards whose
// ids are given in order. Columns not named in cards are empty.
func NewTestColumns(cards map[domain.ColumnID][]string) domain.Columns {
	titles := map[domain.ColumnID]string{
		domain.ColumnTodo:       "Todo",
		domain.ColumnInProgress: "In Progress",
		domain.ColumnDone:       "Done",
	}
	cols := make(domain.Columns, 0, len(domain.ColumnOrder))
	for _, id := range domain.ColumnOrder {
		col := domain.Column{ID: id, Title: titles[id], Color: "#000000", Cards: []domain.Card{}}
		for _, cardID := range cards[id] {
			col.Cards = append(col.Cards, NewTestCard(cardID, id))
		}
		cols = append(cols, col)
	}
	return cols
}

// ColumnCardIDs returns the card ids of one column, in order.
func ColumnCardIDs(cols domain.Columns, id domain.ColumnID) []string {
	col, ok := cols.Column(id)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(col.Cards))
	for _, c := range col.Cards {
		ids = append(ids, c.ID)
	}
	return ids
}
