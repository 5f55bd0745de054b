package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/kanbantree/internal/domain"
)

// NodeMark is the expansion glyph drawn before a node's label.
type NodeMark int

const (
	MarkLeaf NodeMark = iota
	MarkCollapsed
	MarkExpanded
	MarkLoading
)

// TreeItem represents a single visible row in a tree display.
type TreeItem struct {
	ID    string
	Title string
	Level int
	// Rails[i] is true when the ancestor at depth i+1 has later siblings, so
	// its vertical connector continues past this row.
	Rails  []bool
	IsLast bool
	Mark   NodeMark
	Detail string

	Selected   bool
	Dragging   bool
	DropTarget bool
}

// TreeMarks highlights interactive state when rendering a forest.
type TreeMarks struct {
	Cursor   string
	Dragging string
	Over     string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeGap    = "   "
)

// FlattenForest lists the rows a reader sees: every root, plus the children of
// each node for which expanded reports true.
func FlattenForest(forest []domain.TreeNode, expanded func(id string) bool, marks TreeMarks) []TreeItem {
	var items []TreeItem
	var walk func(nodes []domain.TreeNode, level int, rails []bool)
	walk = func(nodes []domain.TreeNode, level int, rails []bool) {
		for i, n := range nodes {
			last := i == len(nodes)-1
			open := expanded != nil && expanded(n.ID)
			item := TreeItem{
				ID:         n.ID,
				Title:      n.Label,
				Level:      level,
				Rails:      rails,
				IsLast:     last,
				Mark:       nodeMark(n, open),
				Selected:   n.ID == marks.Cursor,
				Dragging:   n.ID == marks.Dragging,
				DropTarget: marks.Dragging != "" && n.ID == marks.Over && n.ID != marks.Dragging,
			}
			if n.IsLoading() {
				item.Detail = "loading…"
			}
			items = append(items, item)
			if open && len(n.Children) > 0 {
				next := rails
				if level > 0 {
					next = append(append([]bool{}, rails...), !last)
				}
				walk(n.Children, level+1, next)
			}
		}
	}
	walk(forest, 0, nil)
	return items
}

func nodeMark(n domain.TreeNode, open bool) NodeMark {
	switch {
	case n.IsLoading():
		return MarkLoading
	case !n.HasChildren():
		return MarkLeaf
	case open && !n.NeedsFetch():
		return MarkExpanded
	default:
		return MarkCollapsed
	}
}

// RenderForest renders the visible rows of forest as a tree.
func RenderForest(forest []domain.TreeNode, expanded func(id string) bool, marks TreeMarks) string {
	return RenderTree(FlattenForest(forest, expanded, marks))
}

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. The selected row gets a purple
// pointer, the dragged row is amber, and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for _, rail := range item.Rails {
				if rail {
					prefix += treePipe
				} else {
					prefix += treeGap
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		switch {
		case item.Dragging:
			title = StyleYellowBold.Render(title)
		case item.Selected:
			title = Bold(title)
		}

		pointer := "  "
		switch {
		case item.DropTarget:
			pointer = StyleHeader.Render("⤷ ")
		case item.Selected:
			pointer = StylePurple.Render("▶ ")
		}

		content := pointer + StyleDim.Render(prefix) + markGlyph(item.Mark) + title
		lines[idx].content = content

		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render("[ " + item.Detail + " ]")
		}

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := max(maxContentWidth-lipgloss.Width(li.content), 0)
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}

func markGlyph(m NodeMark) string {
	switch m {
	case MarkCollapsed:
		return StyleFg.Render("▸ ")
	case MarkExpanded:
		return StyleFg.Render("▾ ")
	case MarkLoading:
		return StylePurple.Render("⠋ ")
	default:
		return StyleDim.Render("• ")
	}
}
