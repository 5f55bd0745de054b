package cli

import "github.com/charmbracelet/bubbles/key"

// dragKeys are shared by the board and tree views.
type dragKeys struct {
	Up, Down, Left, Right key.Binding
	Move                  key.Binding
	Pick, Drop, Cancel    key.Binding
	Add, Edit, Delete     key.Binding
	Reset                 key.Binding
}

func newDragKeys() dragKeys {
	return dragKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Move:   key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑↓→", "move")),
		Pick:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "drag")),
		Drop:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x x", "delete")),
		Reset:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
	}
}
