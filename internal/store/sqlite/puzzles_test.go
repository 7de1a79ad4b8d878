package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePuzzleDuplicateName(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)

	newTestPuzzle(t, s, hunt.ID, "Tollbooth", false)

	dup := &domain.Puzzle{
		ID:        "puz-dup",
		HuntID:    hunt.ID,
		Name:      "Tollbooth",
		URL:       "https://example.com/other",
		Status:    domain.StatusSolving,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := s.CreatePuzzle(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateIdentity))
}

func TestCreatePuzzleDuplicateURL(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)

	p := newTestPuzzle(t, s, hunt.ID, "First", false)

	dup := &domain.Puzzle{
		ID:        "puz-dup",
		HuntID:    hunt.ID,
		Name:      "Second",
		URL:       p.URL,
		Status:    domain.StatusSolving,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := s.CreatePuzzle(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateIdentity))
}

func TestGetPuzzleByNameCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)
	ctx := context.Background()

	p := newTestPuzzle(t, s, hunt.ID, "Tollbooth", true)

	got, err := s.GetPuzzleByName(ctx, hunt.ID, "tollbooth")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.GetPuzzleByName(ctx, hunt.ID, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSoftDeleteHidesPuzzle(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)
	ctx := context.Background()

	p := newTestPuzzle(t, s, hunt.ID, "Doomed", false)

	now := time.Now()
	p.DeletedAt = &now
	p.UpdatedAt = now
	require.NoError(t, s.UpdatePuzzle(ctx, p))

	_, err := s.GetPuzzle(ctx, p.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "tombstoned puzzle should not be found")

	got, err := s.GetPuzzleIncludingDeleted(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)

	puzzles, err := s.ListPuzzles(ctx, hunt.ID)
	require.NoError(t, err)
	assert.Empty(t, puzzles)
}

func TestNameReusableAfterTombstone(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)
	ctx := context.Background()

	p := newTestPuzzle(t, s, hunt.ID, "Reused", false)
	now := time.Now()
	p.DeletedAt = &now
	require.NoError(t, s.UpdatePuzzle(ctx, p))

	// Same name and URL may be used by a new puzzle.
	newTestPuzzle(t, s, hunt.ID, "Reused", false)
}
