package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/cardinalitypuzzles/cardboard-server/internal/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestHunt(t *testing.T, s *Store) *domain.Hunt {
	t.Helper()
	now := time.Now()
	h := &domain.Hunt{
		ID:        id.MustGenerate("hunt"),
		Name:      "Test Hunt " + id.MustGenerate(""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateHunt(context.Background(), h); err != nil {
		t.Fatalf("create hunt: %v", err)
	}
	return h
}

func newTestPuzzle(t *testing.T, s *Store, huntID, name string, isMeta bool) *domain.Puzzle {
	t.Helper()
	now := time.Now()
	p := &domain.Puzzle{
		ID:        id.MustGenerate("puz"),
		HuntID:    huntID,
		Name:      name,
		URL:       "https://example.com/" + name,
		IsMeta:    isMeta,
		Status:    domain.StatusSolving,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreatePuzzle(context.Background(), p); err != nil {
		t.Fatalf("create puzzle %s: %v", name, err)
	}
	return p
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	tables := []string{"hunts", "puzzles", "tags", "puzzle_tags", "meta_edges", "guesses"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()
}

func TestInTxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	hunt := newTestHunt(t, s)

	wantErr := errors.Validation("boom")
	err := s.InTx(ctx, func(q *Queries) error {
		p := &domain.Puzzle{
			ID:        id.MustGenerate("puz"),
			HuntID:    hunt.ID,
			Name:      "Rolled Back",
			URL:       "https://example.com/rolled-back",
			Status:    domain.StatusSolving,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := q.CreatePuzzle(ctx, p); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	puzzles, err := s.ListPuzzles(ctx, hunt.ID)
	if err != nil {
		t.Fatalf("list puzzles: %v", err)
	}
	if len(puzzles) != 0 {
		t.Errorf("rolled-back insert is visible: %d puzzles", len(puzzles))
	}
}

func TestInTxCommit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	hunt := newTestHunt(t, s)

	err := s.InTx(ctx, func(q *Queries) error {
		p := &domain.Puzzle{
			ID:        id.MustGenerate("puz"),
			HuntID:    hunt.ID,
			Name:      "Committed",
			URL:       "https://example.com/committed",
			Status:    domain.StatusSolving,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		return q.CreatePuzzle(ctx, p)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	puzzles, err := s.ListPuzzles(ctx, hunt.ID)
	if err != nil {
		t.Fatalf("list puzzles: %v", err)
	}
	if len(puzzles) != 1 {
		t.Errorf("expected 1 puzzle, got %d", len(puzzles))
	}
}
