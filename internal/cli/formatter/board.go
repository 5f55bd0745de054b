package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/kanbantree/internal/domain"
)

// ColumnWidth is the inner width of one rendered board column.
const ColumnWidth = 30

// BoardMarks highlights interactive state when rendering a board.
type BoardMarks struct {
	Cursor   string
	Dragging string
	// Over and OverCard locate the drop zone under the drag pointer. An empty
	// OverCard means the end of column Over.
	Over     domain.ColumnID
	OverCard string
}

func (m BoardMarks) dropBefore(col domain.ColumnID, cardID string) bool {
	return m.Dragging != "" && m.Over == col && m.OverCard == cardID && cardID != m.Dragging
}

// RenderBoard lays the columns out side by side.
func RenderBoard(cols domain.Columns, marks BoardMarks) string {
	boxes := make([]string, 0, len(cols))
	for _, col := range cols {
		boxes = append(boxes, renderColumn(col, marks))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func renderColumn(col domain.Column, m BoardMarks) string {
	var b strings.Builder
	b.WriteString(ColumnStyle(col.Color).Render(col.Title))
	b.WriteString(Dim(fmt.Sprintf(" (%d)", len(col.Cards))))
	b.WriteString("\n")

	for _, c := range col.Cards {
		b.WriteString("\n")
		if m.dropBefore(col.ID, c.ID) {
			b.WriteString(dropLine() + "\n")
		}
		b.WriteString(renderCard(c, m))
	}
	if m.dropBefore(col.ID, "") {
		b.WriteString("\n" + dropLine())
	} else if len(col.Cards) == 0 {
		b.WriteString("\n" + Dim("No cards"))
	}

	border := ColorDim
	if m.Dragging != "" && m.Over == col.ID {
		border = ColorHeader
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(ColumnWidth).
		Padding(0, 1).
		Render(b.String())
}

func renderCard(c domain.Card, m BoardMarks) string {
	pointer := "  "
	title := Truncate(c.Title, ColumnWidth-4)
	switch {
	case c.ID == m.Dragging:
		pointer = StyleYellowBold.Render("✥ ")
		title = StyleYellowBold.Render(title)
	case c.ID == m.Cursor:
		pointer = StylePurple.Render("▶ ")
		title = Bold(title)
	}

	line := pointer + title + "\n  " + Dim(c.ID)
	if c.Description != "" {
		line += "\n  " + Dim(Truncate(c.Description, ColumnWidth-4))
	}
	return line
}

func dropLine() string {
	return StyleHeader.Render(strings.Repeat("┄", ColumnWidth-2))
}

// RenderBoardSummary renders the card count, completion bar and saved badge.
func RenderBoardSummary(cols domain.Columns, saved bool) string {
	done := 0
	if col, ok := cols.Column(domain.ColumnDone); ok {
		done = len(col.Cards)
	}
	total := cols.TotalCards()
	parts := []string{
		Dim(fmt.Sprintf("%d cards", total)),
		RenderProgress(done, total, 12),
	}
	if badge := SavedBadge(saved); badge != "" {
		parts = append(parts, badge)
	}
	return strings.Join(parts, "  ")
}
