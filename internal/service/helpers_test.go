package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/store/sqlite"
)

// recordingSink captures notifications and document renames so tests can
// assert which effects fired after commit.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingSink) has(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recordingSink) NotifyTagAdded(_ context.Context, puzzleID, tagName string) error {
	r.record("tag_added %s %s", puzzleID, tagName)
	return nil
}

func (r *recordingSink) NotifyTagRemoved(_ context.Context, puzzleID, tagName string) error {
	r.record("tag_removed %s %s", puzzleID, tagName)
	return nil
}

func (r *recordingSink) NotifyMetaChanged(_ context.Context, puzzleID string) error {
	r.record("meta_changed %s", puzzleID)
	return nil
}

func (r *recordingSink) NotifyAnswerChanged(_ context.Context, puzzleID, oldAnswer, newAnswer string) error {
	r.record("answer_changed %s %s %s", puzzleID, oldAnswer, newAnswer)
	return nil
}

func (r *recordingSink) NotifyPuzzleSolved(_ context.Context, puzzleID, answerText string) error {
	r.record("solved %s %s", puzzleID, answerText)
	return nil
}

func (r *recordingSink) NotifyPuzzleUnsolved(_ context.Context, puzzleID string) error {
	r.record("unsolved %s", puzzleID)
	return nil
}

func (r *recordingSink) NotifyPuzzleRenamed(_ context.Context, puzzleID, oldName, newName string) error {
	r.record("renamed %s %s %s", puzzleID, oldName, newName)
	return nil
}

func (r *recordingSink) RenameDocument(_ context.Context, ref, newTitle string) error {
	r.record("doc_renamed %s %s", ref, newTitle)
	return nil
}

// testEnv wires the services against a throwaway store with a recording
// sink and no search index.
type testEnv struct {
	store   *sqlite.Store
	hunts   *HuntService
	puzzles *PuzzleService
	answers *AnswerService
	sink    *recordingSink
	hunt    *domain.Hunt
}

func newTestEnv(t *testing.T, answerQueueEnabled bool) *testEnv {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.DiscardHandler)
	sink := &recordingSink{}

	env := &testEnv{
		store:   st,
		hunts:   NewHuntService(st, nil, logger),
		puzzles: NewPuzzleService(st, nil, sink, sink, nil, logger),
		answers: NewAnswerService(st, nil, sink, sink, nil, logger),
		sink:    sink,
	}

	env.hunt, err = env.hunts.CreateHunt(context.Background(), "Test Hunt", answerQueueEnabled)
	require.NoError(t, err)

	return env
}

func (e *testEnv) addPuzzle(t *testing.T, name string, isMeta bool) *domain.Puzzle {
	t.Helper()
	p, err := e.puzzles.CreatePuzzle(context.Background(), e.hunt.ID, CreatePuzzleParams{
		Name:   name,
		URL:    "https://example.com/" + strings.ReplaceAll(name, " ", "-"),
		IsMeta: isMeta,
	})
	require.NoError(t, err)
	return p
}

// metaIDs returns the IDs of the live metas p is assigned to.
func (e *testEnv) metaIDs(t *testing.T, puzzleID string) []string {
	t.Helper()
	ids, err := e.store.ListMetaIDs(context.Background(), puzzleID)
	require.NoError(t, err)
	return ids
}

// tagNames returns the names of the tags on a puzzle.
func (e *testEnv) tagNames(t *testing.T, puzzleID string) []string {
	t.Helper()
	tags, err := e.store.ListTagsForPuzzle(context.Background(), puzzleID)
	require.NoError(t, err)
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}
