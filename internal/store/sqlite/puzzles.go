package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
)

// puzzleColumns is the ordered list of columns selected in puzzle queries.
// Must match the scan order in scanPuzzle.
const puzzleColumns = `id, hunt_id, name, url, sheet_ref, notes, is_meta, status, answer, created_at, updated_at, deleted_at`

func scanPuzzle(scanner interface{ Scan(dest ...any) error }) (*domain.Puzzle, error) {
	var p domain.Puzzle

	var (
		isMeta    int
		status    string
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&p.HuntID,
		&p.Name,
		&p.URL,
		&p.SheetRef,
		&p.Notes,
		&isMeta,
		&status,
		&p.Answer,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	p.IsMeta = isMeta != 0
	p.Status = domain.PuzzleStatus(status)
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePuzzle inserts a new puzzle.
// Returns a DuplicateIdentityError on a live name or URL collision.
func (q *Queries) CreatePuzzle(ctx context.Context, p *domain.Puzzle) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO puzzles (id, hunt_id, name, url, sheet_ref, notes, is_meta, status, answer, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.HuntID,
		p.Name,
		p.URL,
		p.SheetRef,
		p.Notes,
		boolInt(p.IsMeta),
		string(p.Status),
		p.Answer,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		nullTimeString(p.DeletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.DuplicateIdentityf("puzzle name or URL already in use: %s", p.Name)
		}
		return err
	}
	return nil
}

// GetPuzzle retrieves a live puzzle by ID. Tombstoned puzzles are not found.
func (q *Queries) GetPuzzle(ctx context.Context, puzzleID string) (*domain.Puzzle, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+puzzleColumns+` FROM puzzles WHERE id = ? AND deleted_at IS NULL`, puzzleID)

	p, err := scanPuzzle(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("puzzle %q not found", puzzleID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPuzzleIncludingDeleted retrieves a puzzle by ID regardless of tombstone.
// Used by the restore flow.
func (q *Queries) GetPuzzleIncludingDeleted(ctx context.Context, puzzleID string) (*domain.Puzzle, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+puzzleColumns+` FROM puzzles WHERE id = ?`, puzzleID)

	p, err := scanPuzzle(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("puzzle %q not found", puzzleID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPuzzleByName retrieves a live puzzle by name, case-insensitively.
// Tag-driven meta assignment matches tag names against puzzle names this way.
func (q *Queries) GetPuzzleByName(ctx context.Context, huntID, name string) (*domain.Puzzle, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+puzzleColumns+` FROM puzzles
		 WHERE hunt_id = ? AND name = ? COLLATE NOCASE AND deleted_at IS NULL`,
		huntID, name)

	p, err := scanPuzzle(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("puzzle %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPuzzles returns all live puzzles in a hunt, ordered by creation time.
func (q *Queries) ListPuzzles(ctx context.Context, huntID string) ([]*domain.Puzzle, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+puzzleColumns+` FROM puzzles
		WHERE hunt_id = ? AND deleted_at IS NULL
		ORDER BY created_at ASC`, huntID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	puzzles := []*domain.Puzzle{}
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		puzzles = append(puzzles, p)
	}
	return puzzles, rows.Err()
}

// ListPuzzlesByIDs returns the live puzzles matching ids, in no particular order.
func (q *Queries) ListPuzzlesByIDs(ctx context.Context, ids []string) ([]*domain.Puzzle, error) {
	if len(ids) == 0 {
		return []*domain.Puzzle{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.q.QueryContext(ctx, `
		SELECT `+puzzleColumns+` FROM puzzles
		WHERE id IN (`+placeholders+`) AND deleted_at IS NULL`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	puzzles := []*domain.Puzzle{}
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		puzzles = append(puzzles, p)
	}
	return puzzles, rows.Err()
}

// UpdatePuzzle persists puzzle field changes.
// Returns a DuplicateIdentityError when a rename collides with a live puzzle.
func (q *Queries) UpdatePuzzle(ctx context.Context, p *domain.Puzzle) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE puzzles
		SET name = ?, url = ?, sheet_ref = ?, notes = ?, is_meta = ?, status = ?, answer = ?, updated_at = ?, deleted_at = ?
		WHERE id = ?`,
		p.Name,
		p.URL,
		p.SheetRef,
		p.Notes,
		boolInt(p.IsMeta),
		string(p.Status),
		p.Answer,
		formatTime(p.UpdatedAt),
		nullTimeString(p.DeletedAt),
		p.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.DuplicateIdentityf("puzzle name or URL already in use: %s", p.Name)
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFoundf("puzzle %q not found", p.ID)
	}
	return nil
}
