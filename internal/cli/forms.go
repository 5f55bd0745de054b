package cli

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/kanbantree/internal/cli/formatter"
	"github.com/alexanderramin/kanbantree/internal/domain"
)

// formTheme styles huh prompts in the board palette.
func formTheme() *huh.Theme {
	fg := lipgloss.NewStyle().Foreground(formatter.ColorFg)
	dim := lipgloss.NewStyle().Foreground(formatter.ColorDim)
	accent := lipgloss.NewStyle().Foreground(formatter.ColorHeader)

	t := huh.ThemeBase()
	t.Focused.Title = accent.Bold(true)
	t.Focused.Description = dim
	t.Focused.TextInput.Prompt = accent
	t.Focused.TextInput.Cursor = accent
	t.Focused.TextInput.Text = fg
	t.Focused.TextInput.Placeholder = dim
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Blurred.Title = dim
	t.Blurred.TextInput.Prompt = dim
	t.Blurred.TextInput.Text = dim
	return t
}

func validateLabel(s string) error {
	_, err := domain.NormalizeLabel(s)
	return err
}

// labelInput is a required single-line input; blank values are rejected
// before submit.
func labelInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Value(value).
		Validate(validateLabel)
}

// labelForm asks for a card title or node label.
func labelForm(title string, value *string) *huh.Form {
	return huh.NewForm(huh.NewGroup(labelInput(title, value))).
		WithTheme(formTheme()).
		WithShowHelp(false)
}

// cardForm asks for a new card's title and optional description.
func cardForm(title, desc *string) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		labelInput("Title", title),
		huh.NewInput().Title("Description (optional)").Value(desc),
	)).WithTheme(formTheme()).WithShowHelp(false)
}
