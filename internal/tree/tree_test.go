package tree

import (
	"testing"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func puzzle(id, name string, solved bool) *domain.Puzzle {
	status := domain.StatusSolving
	if solved {
		status = domain.StatusSolved
	}
	return &domain.Puzzle{ID: id, Name: name, Status: status}
}

func TestRenderFlat(t *testing.T) {
	puzzles := []*domain.Puzzle{
		puzzle("b", "Bravo", true),
		puzzle("a", "Alpha", false),
		puzzle("c", "Charlie", false),
	}

	rows, err := Render(puzzles, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Unsolved first, then by name; solved last.
	assert.Equal(t, "Alpha", rows[0].Puzzle.Name)
	assert.Equal(t, "Charlie", rows[1].Puzzle.Name)
	assert.Equal(t, "Bravo", rows[2].Puzzle.Name)
	for _, r := range rows {
		assert.Empty(t, r.ParentID)
		assert.Zero(t, r.Depth)
	}
}

func TestRenderNesting(t *testing.T) {
	puzzles := []*domain.Puzzle{
		puzzle("meta", "Meta", false),
		puzzle("f1", "Feeder One", false),
		puzzle("f2", "Feeder Two", true),
	}
	edges := []graph.Edge{
		{FeederID: "f1", MetaID: "meta"},
		{FeederID: "f2", MetaID: "meta"},
	}

	rows, err := Render(puzzles, edges)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Meta", rows[0].Puzzle.Name)
	assert.Equal(t, 0, rows[0].Depth)
	assert.Equal(t, "Feeder One", rows[1].Puzzle.Name)
	assert.Equal(t, "meta", rows[1].ParentID)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Equal(t, "Feeder Two", rows[2].Puzzle.Name)
}

func TestRenderDuplicatesPerParent(t *testing.T) {
	puzzles := []*domain.Puzzle{
		puzzle("m1", "Meta One", false),
		puzzle("m2", "Meta Two", false),
		puzzle("shared", "Shared Feeder", false),
	}
	edges := []graph.Edge{
		{FeederID: "shared", MetaID: "m1"},
		{FeederID: "shared", MetaID: "m2"},
	}

	rows, err := Render(puzzles, edges)
	require.NoError(t, err)

	count := 0
	parents := map[string]bool{}
	for _, r := range rows {
		if r.Puzzle.ID == "shared" {
			count++
			parents[r.ParentID] = true
		}
	}
	assert.Equal(t, 2, count, "a puzzle with 2 metas appears exactly twice")
	assert.True(t, parents["m1"] && parents["m2"])
}

func TestRenderChildlessBeforeMetas(t *testing.T) {
	puzzles := []*domain.Puzzle{
		puzzle("meta", "Aardvark Meta", false),
		puzzle("leaf", "Zebra", false),
		puzzle("f", "Feeder", false),
	}
	edges := []graph.Edge{{FeederID: "f", MetaID: "meta"}}

	rows, err := Render(puzzles, edges)
	require.NoError(t, err)

	// Zebra sorts before Aardvark Meta despite the name: it has no children.
	assert.Equal(t, "Zebra", rows[0].Puzzle.Name)
	assert.Equal(t, "Aardvark Meta", rows[1].Puzzle.Name)
}

func TestRenderCollapseHint(t *testing.T) {
	puzzles := []*domain.Puzzle{
		puzzle("meta", "Meta", true),
		puzzle("f1", "Feeder One", true),
		puzzle("open", "Open Meta", true),
		puzzle("f2", "Feeder Two", false),
	}
	edges := []graph.Edge{
		{FeederID: "f1", MetaID: "meta"},
		{FeederID: "f2", MetaID: "open"},
	}

	rows, err := Render(puzzles, edges)
	require.NoError(t, err)

	byName := map[string]Row{}
	for _, r := range rows {
		byName[r.Puzzle.Name] = r
	}

	assert.True(t, byName["Meta"].Collapse, "fully solved subtree collapses")
	assert.False(t, byName["Open Meta"].Collapse, "unsolved feeder keeps the branch open")
	assert.False(t, byName["Feeder One"].Collapse, "leaves never collapse")
}

func TestRenderCorruptCycleFailsClosed(t *testing.T) {
	puzzles := []*domain.Puzzle{
		puzzle("a", "A", false),
		puzzle("b", "B", false),
	}
	// A cyclic edge set can only come from a corrupt store; Render must
	// return an error rather than hang.
	edges := []graph.Edge{
		{FeederID: "a", MetaID: "b"},
		{FeederID: "b", MetaID: "a"},
	}

	_, err := Render(puzzles, edges)
	require.Error(t, err)
}
