package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
)

func TestCreateMetaCreatesMirrorTag(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Grand Meta", true)

	tag, err := env.store.GetTagByName(ctx, env.hunt.ID, "Grand Meta")
	require.NoError(t, err)
	assert.True(t, tag.IsMeta)
	assert.Equal(t, domain.ColorDark, tag.Color)

	// The meta wears its own tag, but that assignment is not an edge.
	assert.Contains(t, env.tagNames(t, meta.ID), "Grand Meta")
	assert.Empty(t, env.metaIDs(t, meta.ID))
}

func TestAddMetaTagCreatesEdge(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Grand Meta", true)
	feeder := env.addPuzzle(t, "Feeder", false)

	_, err := env.puzzles.AddTag(ctx, feeder.ID, "Grand Meta", "")
	require.NoError(t, err)

	assert.Equal(t, []string{meta.ID}, env.metaIDs(t, feeder.ID))
	assert.Contains(t, env.tagNames(t, feeder.ID), "Grand Meta")
	assert.True(t, env.sink.has("meta_changed "+feeder.ID))
	assert.True(t, env.sink.has("tag_added "+feeder.ID))
}

func TestAddMetaTagCycleRejectedAtomically(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	upper := env.addPuzzle(t, "Upper Meta", true)
	lower := env.addPuzzle(t, "Lower Meta", true)

	// Lower feeds Upper.
	_, err := env.puzzles.AddTag(ctx, lower.ID, "Upper Meta", "")
	require.NoError(t, err)

	// Upper feeding Lower would close the loop; nothing may be applied.
	_, err = env.puzzles.AddTag(ctx, upper.ID, "Lower Meta", "")
	require.True(t, errors.Is(err, errors.ErrCycle))

	assert.Empty(t, env.metaIDs(t, upper.ID))
	assert.NotContains(t, env.tagNames(t, upper.ID), "Lower Meta")
}

func TestAddOwnMetaTagRejected(t *testing.T) {
	env := newTestEnv(t, false)

	meta := env.addPuzzle(t, "Grand Meta", true)

	_, err := env.puzzles.AddTag(context.Background(), meta.ID, "Grand Meta", "")
	assert.True(t, errors.Is(err, errors.ErrCycle))
}

func TestTagNamedAfterFeederRejected(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Meta", true)
	feeder := env.addPuzzle(t, "Feeder", false)
	_, err := env.puzzles.AddTag(ctx, feeder.ID, "Meta", "")
	require.NoError(t, err)

	// "Feeder" is not a meta, but a tag carrying its name would still
	// put the meta underneath its own feeder.
	_, err = env.puzzles.AddTag(ctx, meta.ID, "Feeder", "")
	require.True(t, errors.Is(err, errors.ErrCycle))

	// The rejected tag must not survive as a cosmetic one.
	_, err = env.store.GetTagByName(ctx, env.hunt.ID, "Feeder")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.NotContains(t, env.tagNames(t, meta.ID), "Feeder")
}

func TestPriorityTagsMutuallyExclusive(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addPuzzle(t, "Puzzle", false)

	_, err := env.puzzles.AddTag(ctx, p.ID, domain.TagHighPriority, "")
	require.NoError(t, err)
	require.Contains(t, env.tagNames(t, p.ID), domain.TagHighPriority)

	_, err = env.puzzles.AddTag(ctx, p.ID, domain.TagLowPriority, "")
	require.NoError(t, err)

	names := env.tagNames(t, p.ID)
	assert.Contains(t, names, domain.TagLowPriority)
	assert.NotContains(t, names, domain.TagHighPriority)
}

func TestRemoveTagReapsEmptyTag(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addPuzzle(t, "Puzzle", false)

	_, err := env.puzzles.AddTag(ctx, p.ID, "onsite", domain.ColorInfo)
	require.NoError(t, err)

	require.NoError(t, env.puzzles.RemoveTag(ctx, p.ID, "onsite"))

	// The last assignment is gone, so the tag itself is reaped.
	_, err = env.store.GetTagByName(ctx, env.hunt.ID, "onsite")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRemoveTagKeepsDefaultTags(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addPuzzle(t, "Puzzle", false)

	_, err := env.puzzles.AddTag(ctx, p.ID, domain.TagBacksolved, "")
	require.NoError(t, err)
	require.NoError(t, env.puzzles.RemoveTag(ctx, p.ID, domain.TagBacksolved))

	tag, err := env.store.GetTagByName(ctx, env.hunt.ID, domain.TagBacksolved)
	require.NoError(t, err)
	assert.True(t, tag.IsDefault)
}

func TestRenameMetaRenamesMirrorTag(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Old Name", true)
	feeder := env.addPuzzle(t, "Feeder", false)
	_, err := env.puzzles.AddTag(ctx, feeder.ID, "Old Name", "")
	require.NoError(t, err)

	_, err = env.puzzles.RenamePuzzle(ctx, meta.ID, "New Name")
	require.NoError(t, err)

	_, err = env.store.GetTagByName(ctx, env.hunt.ID, "Old Name")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	tag, err := env.store.GetTagByName(ctx, env.hunt.ID, "New Name")
	require.NoError(t, err)
	assert.True(t, tag.IsMeta)

	// The feeder keeps its edge and sees the renamed tag.
	assert.Equal(t, []string{meta.ID}, env.metaIDs(t, feeder.ID))
	assert.Contains(t, env.tagNames(t, feeder.ID), "New Name")
	assert.True(t, env.sink.has("renamed "+meta.ID))
}

func TestRenameMetaToTakenTagNameRejected(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Grand Meta", true)
	other := env.addPuzzle(t, "Other", false)
	_, err := env.puzzles.AddTag(ctx, other.ID, "Theme", "")
	require.NoError(t, err)

	// The mirror tag cannot move to a name a plain tag already holds.
	_, err = env.puzzles.RenamePuzzle(ctx, meta.ID, "Theme")
	require.True(t, errors.Is(err, errors.ErrDuplicateIdentity))

	// The rename rolled back whole.
	got, err := env.puzzles.GetPuzzle(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grand Meta", got.Name)
}

func TestRenameWithSheetUpdatesDocumentTitle(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	p, err := env.puzzles.CreatePuzzle(ctx, env.hunt.ID, CreatePuzzleParams{
		Name:     "Sheeted",
		URL:      "https://example.com/sheeted",
		SheetRef: "sheet-1",
	})
	require.NoError(t, err)

	_, err = env.puzzles.RenamePuzzle(ctx, p.ID, "Renamed")
	require.NoError(t, err)
	assert.True(t, env.sink.has("doc_renamed sheet-1 Renamed"))
}

func TestPromoteAdoptsExistingTagHolders(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	// A plain tag shared by two puzzles, named after a puzzle that later
	// becomes that tag's meta.
	target := env.addPuzzle(t, "Chemistry", false)
	a := env.addPuzzle(t, "Alpha", false)
	b := env.addPuzzle(t, "Beta", false)
	for _, pid := range []string{a.ID, b.ID} {
		_, err := env.puzzles.AddTag(ctx, pid, "Chemistry", "")
		require.NoError(t, err)
	}

	_, err := env.puzzles.SetMeta(ctx, target.ID, true)
	require.NoError(t, err)

	assert.Equal(t, []string{target.ID}, env.metaIDs(t, a.ID))
	assert.Equal(t, []string{target.ID}, env.metaIDs(t, b.ID))

	tag, err := env.store.GetTagByName(ctx, env.hunt.ID, "Chemistry")
	require.NoError(t, err)
	assert.True(t, tag.IsMeta)

	// The new meta picked up its own tag without gaining an edge.
	assert.Contains(t, env.tagNames(t, target.ID), "Chemistry")
	assert.Empty(t, env.metaIDs(t, target.ID))
}

func TestDemoteMetaWithFeedersRejected(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Grand Meta", true)
	feeder := env.addPuzzle(t, "Feeder", false)
	_, err := env.puzzles.AddTag(ctx, feeder.ID, "Grand Meta", "")
	require.NoError(t, err)

	_, err = env.puzzles.SetMeta(ctx, meta.ID, false)
	require.True(t, errors.Is(err, errors.ErrInvalidMetaOperation))

	// Orphan the meta, then demotion deletes the mirror tag.
	require.NoError(t, env.puzzles.RemoveTag(ctx, feeder.ID, "Grand Meta"))
	_, err = env.puzzles.SetMeta(ctx, meta.ID, false)
	require.NoError(t, err)

	_, err = env.store.GetTagByName(ctx, env.hunt.ID, "Grand Meta")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteMetaWithFeedersRejected(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Grand Meta", true)
	feeder := env.addPuzzle(t, "Feeder", false)
	_, err := env.puzzles.AddTag(ctx, feeder.ID, "Grand Meta", "")
	require.NoError(t, err)

	err = env.puzzles.DeletePuzzle(ctx, meta.ID)
	assert.True(t, errors.Is(err, errors.ErrInvalidMetaOperation))
}

func TestDeletePuzzleFreesIdentity(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	p := env.addPuzzle(t, "Reusable", false)
	require.NoError(t, env.puzzles.DeletePuzzle(ctx, p.ID))

	_, err := env.puzzles.GetPuzzle(ctx, p.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Name and URL are reusable immediately after the tombstone.
	env.addPuzzle(t, "Reusable", false)
}

func TestRestorePuzzle(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	p := env.addPuzzle(t, "Phoenix", false)
	require.NoError(t, env.puzzles.DeletePuzzle(ctx, p.ID))

	restored, err := env.puzzles.RestorePuzzle(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	got, err := env.puzzles.GetPuzzle(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phoenix", got.Name)
}

func TestRestoreAfterIdentityReuseRejected(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	p := env.addPuzzle(t, "Contested", false)
	require.NoError(t, env.puzzles.DeletePuzzle(ctx, p.ID))
	env.addPuzzle(t, "Contested", false)

	_, err := env.puzzles.RestorePuzzle(ctx, p.ID)
	assert.True(t, errors.Is(err, errors.ErrDuplicateIdentity))
}

func TestSetMetasReplacesAssignments(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	m1 := env.addPuzzle(t, "Meta One", true)
	m2 := env.addPuzzle(t, "Meta Two", true)
	p := env.addPuzzle(t, "Feeder", false)

	_, err := env.puzzles.SetMetas(ctx, p.ID, []string{m1.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{m1.ID}, env.metaIDs(t, p.ID))
	assert.Contains(t, env.tagNames(t, p.ID), "Meta One")

	// Swap: edge and mirror tag follow together.
	_, err = env.puzzles.SetMetas(ctx, p.ID, []string{m2.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{m2.ID}, env.metaIDs(t, p.ID))
	names := env.tagNames(t, p.ID)
	assert.Contains(t, names, "Meta Two")
	assert.NotContains(t, names, "Meta One")
}

func TestSetMetasCycleAbortsWholeBatch(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	m1 := env.addPuzzle(t, "Meta One", true)
	m2 := env.addPuzzle(t, "Meta Two", true)
	m3 := env.addPuzzle(t, "Meta Three", true)

	_, err := env.puzzles.SetMetas(ctx, m2.ID, []string{m1.ID})
	require.NoError(t, err)

	// m1 -> m3 is fine on its own, but m1 -> m2 closes a loop; the batch
	// must leave no trace of either.
	_, err = env.puzzles.SetMetas(ctx, m1.ID, []string{m3.ID, m2.ID})
	require.True(t, errors.Is(err, errors.ErrCycle))
	assert.Empty(t, env.metaIDs(t, m1.ID))
	assert.NotContains(t, env.tagNames(t, m1.ID), "Meta Three")
}

func TestSetMetasRejectsNonMetaTarget(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	plain := env.addPuzzle(t, "Plain", false)
	p := env.addPuzzle(t, "Feeder", false)

	_, err := env.puzzles.SetMetas(ctx, p.ID, []string{plain.ID})
	assert.True(t, errors.Is(err, errors.ErrInvalidMetaOperation))
}

func TestSetStatusManualTransitions(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addPuzzle(t, "Puzzle", false)

	got, err := env.puzzles.SetStatus(ctx, p.ID, domain.StatusStuck)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStuck, got.Status)

	_, err = env.puzzles.SetStatus(ctx, p.ID, domain.StatusSolved)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestGetTreeNestsFeedersUnderMetas(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	meta := env.addPuzzle(t, "Grand Meta", true)
	a := env.addPuzzle(t, "Alpha", false)
	b := env.addPuzzle(t, "Beta", false)
	for _, pid := range []string{a.ID, b.ID} {
		_, err := env.puzzles.AddTag(ctx, pid, "Grand Meta", "")
		require.NoError(t, err)
	}
	loose := env.addPuzzle(t, "Loose End", false)

	rows, err := env.puzzles.GetTree(ctx, env.hunt.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	parents := map[string]string{}
	depths := map[string]int{}
	for _, row := range rows {
		parents[row.Puzzle.ID] = row.ParentID
		depths[row.Puzzle.ID] = row.Depth
	}
	assert.Equal(t, "", parents[meta.ID])
	assert.Equal(t, "", parents[loose.ID])
	assert.Equal(t, meta.ID, parents[a.ID])
	assert.Equal(t, meta.ID, parents[b.ID])
	assert.Equal(t, 1, depths[a.ID])
}

func TestGetTreeDuplicatesSharedFeeders(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	m1 := env.addPuzzle(t, "Meta One", true)
	m2 := env.addPuzzle(t, "Meta Two", true)
	shared := env.addPuzzle(t, "Shared", false)
	_, err := env.puzzles.SetMetas(ctx, shared.ID, []string{m1.ID, m2.ID})
	require.NoError(t, err)

	rows, err := env.puzzles.GetTree(ctx, env.hunt.ID)
	require.NoError(t, err)

	count := 0
	for _, row := range rows {
		if row.Puzzle.ID == shared.ID {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestRemoveOwnMetaTagRejected(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	meta := env.addPuzzle(t, "Meta", true)

	err := env.puzzles.RemoveTag(ctx, meta.ID, "Meta")
	assert.True(t, errors.Is(err, errors.ErrInvalidMetaOperation))
}

func TestIsBacksolvedFollowsTag(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.addPuzzle(t, "Puzzle", false)

	back, err := env.puzzles.IsBacksolved(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, back)

	_, err = env.puzzles.AddTag(ctx, p.ID, domain.TagBacksolved, "")
	require.NoError(t, err)

	back, err = env.puzzles.IsBacksolved(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, back)

	require.NoError(t, env.puzzles.RemoveTag(ctx, p.ID, domain.TagBacksolved))

	back, err = env.puzzles.IsBacksolved(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, back)
}
