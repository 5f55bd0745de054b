package formatter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes ANSI escape codes so assertions are terminal-independent.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderBox(t *testing.T) {
	result := RenderBox("TEST", "content here")
	assert.Contains(t, result, "TEST")
	assert.Contains(t, result, "content here")
	// Should contain rounded border characters
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

func TestRenderBoxWithoutTitle(t *testing.T) {
	result := RenderBox("", "just content")
	assert.Contains(t, result, "just content")
	assert.Contains(t, result, "╭")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Setup project", 20, "Setup project"},
		{"Setup project", 6, "Setup…"},
		{"Ünïcödé", 4, "Ünï…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.width), "%q/%d", tt.in, tt.width)
	}
}

func TestColumnStyle_FallsBackOnBadColor(t *testing.T) {
	assert.Equal(t, StyleHeader, ColumnStyle("orange"))
	assert.Equal(t, StyleHeader, ColumnStyle(""))
	assert.NotEqual(t, StyleHeader, ColumnStyle("#5b52f0"))
}

func TestSavedBadge(t *testing.T) {
	assert.Empty(t, SavedBadge(false))
	assert.Equal(t, "✔ Saved", stripANSI(SavedBadge(true)))
}
