package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/cardinalitypuzzles/cardboard-server/internal/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuess(t *testing.T, s *Store, puzzleID, text string, status domain.GuessStatus) *domain.Guess {
	t.Helper()
	now := time.Now()
	g := &domain.Guess{
		ID:        id.MustGenerate("gss"),
		PuzzleID:  puzzleID,
		Text:      text,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateGuess(context.Background(), g); err != nil {
		t.Fatalf("create guess %s: %v", text, err)
	}
	return g
}

func TestCreateGuessDuplicate(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)
	p := newTestPuzzle(t, s, hunt.ID, "Puzzle", false)

	newTestGuess(t, s, p.ID, "ANS", domain.GuessCorrect)

	dup := &domain.Guess{
		ID:        "gss-dup",
		PuzzleID:  p.ID,
		Text:      "ANS",
		Status:    domain.GuessNew,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := s.CreateGuess(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateAnswer))
}

func TestSameTextOnDifferentPuzzles(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)
	p1 := newTestPuzzle(t, s, hunt.ID, "One", false)
	p2 := newTestPuzzle(t, s, hunt.ID, "Two", false)

	newTestGuess(t, s, p1.ID, "ANS", domain.GuessCorrect)
	newTestGuess(t, s, p2.ID, "ANS", domain.GuessCorrect)
}

func TestListGuessesOrdered(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)
	p := newTestPuzzle(t, s, hunt.ID, "Puzzle", false)
	ctx := context.Background()

	g1 := newTestGuess(t, s, p.ID, "FIRST", domain.GuessIncorrect)
	time.Sleep(2 * time.Millisecond)
	g2 := newTestGuess(t, s, p.ID, "SECOND", domain.GuessCorrect)

	guesses, err := s.ListGuesses(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, guesses, 2)
	assert.Equal(t, g1.ID, guesses[0].ID)
	assert.Equal(t, g2.ID, guesses[1].ID)
}

func TestUpdateAndDeleteGuess(t *testing.T) {
	s := newTestStore(t)
	hunt := newTestHunt(t, s)
	p := newTestPuzzle(t, s, hunt.ID, "Puzzle", false)
	ctx := context.Background()

	g := newTestGuess(t, s, p.ID, "ANS", domain.GuessNew)

	g.Status = domain.GuessCorrect
	g.Response = "verified by HQ"
	g.UpdatedAt = time.Now()
	require.NoError(t, s.UpdateGuess(ctx, g))

	got, err := s.GetGuess(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GuessCorrect, got.Status)
	assert.Equal(t, "verified by HQ", got.Response)

	require.NoError(t, s.DeleteGuess(ctx, g.ID))
	_, err = s.GetGuess(ctx, g.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = s.DeleteGuess(ctx, g.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
