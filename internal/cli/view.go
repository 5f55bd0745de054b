package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID names a screen of the TUI.
type ViewID int

const (
	ViewBoard ViewID = iota
	ViewTree
	ViewForm
)

// View is a screen on the app model's stack. The board and tree views sit
// at the bottom; forms are pushed over them.
type View interface {
	tea.Model
	ID() ViewID
	Title() string
	ShortHelp() []key.Binding
}

// chromeLines is the header plus the status bar, two lines each.
const chromeLines = 4

// SharedState is what every view sees through a pointer.
type SharedState struct {
	App *App

	Width, Height int

	// Status is the outcome of the last action.
	Status string
}

// ContentHeight is the number of lines left for the active view.
func (s *SharedState) ContentHeight() int {
	return max(s.Height-chromeLines, 1)
}
