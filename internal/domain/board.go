package domain

// ColumnID names one of the three fixed board columns.
type ColumnID string

const (
	ColumnTodo       ColumnID = "todo"
	ColumnInProgress ColumnID = "inprogress"
	ColumnDone       ColumnID = "done"
)

// ColumnOrder is the fixed set of board columns in display order.
var ColumnOrder = []ColumnID{ColumnTodo, ColumnInProgress, ColumnDone}

// ValidColumnIDs is the canonical set of accepted column id strings.
var ValidColumnIDs = map[string]bool{
	"todo": true, "inprogress": true, "done": true,
}

// ParseColumnID converts s to a ColumnID, rejecting anything outside the fixed set.
func ParseColumnID(s string) (ColumnID, error) {
	if !ValidColumnIDs[s] {
		return "", &UnknownColumnError{ID: s}
	}
	return ColumnID(s), nil
}

// Card is a single task on the board. ColumnID always matches the column holding it.
type Card struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ColumnID    ColumnID `json:"columnId"`
}

// Column is an ordered list of cards under a title and accent color.
type Column struct {
	ID    ColumnID `json:"id"`
	Title string   `json:"title"`
	Color string   `json:"color"`
	Cards []Card   `json:"cards"`
}

// Columns is one revision of the board. Transforms return a new value and
// never modify the receiver's cards in place.
type Columns []Column

// Clone returns a deep copy of the board.
func (c Columns) Clone() Columns {
	if c == nil {
		return nil
	}
	out := make(Columns, len(c))
	for i, col := range c {
		out[i] = col
		out[i].Cards = append([]Card{}, col.Cards...)
	}
	return out
}

// Column returns the column with the given id.
func (c Columns) Column(id ColumnID) (Column, bool) {
	for _, col := range c {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

// TotalCards counts cards across all columns.
func (c Columns) TotalCards() int {
	total := 0
	for _, col := range c {
		total += len(col.Cards)
	}
	return total
}
