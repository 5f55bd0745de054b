package seed

import (
	"testing"

	"github.com/alexanderramin/kanbantree/internal/board"
	"github.com/alexanderramin/kanbantree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_SatisfiesInvariants(t *testing.T) {
	cols := Board()
	require.NoError(t, board.Validate(cols))
	assert.Equal(t, 17, cols.TotalCards())
}

func TestBoard_ReturnsIndependentCopies(t *testing.T) {
	a := Board()
	a[0].Cards[0].Title = "changed"
	assert.Equal(t, "Create initial project plan", Board()[0].Cards[0].Title)
}

func TestChildren_IDsUniqueAcrossSeed(t *testing.T) {
	all := Forest()
	for _, kids := range Children() {
		all = append(all, kids...)
	}
	require.NoError(t, tree.Validate(all))
}

func TestChildren_LazyNodesHaveEntries(t *testing.T) {
	children := Children()
	for _, kids := range children {
		for _, n := range kids {
			if n.NeedsFetch() {
				assert.Contains(t, children, n.ID, "lazy node %s has nothing to fetch", n.ID)
			}
		}
	}
}
