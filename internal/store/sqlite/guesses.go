package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
)

// guessColumns is the ordered list of columns selected in guess queries.
// Must match the scan order in scanGuess.
const guessColumns = `id, puzzle_id, text, status, response, created_at, updated_at`

func scanGuess(scanner interface{ Scan(dest ...any) error }) (*domain.Guess, error) {
	var g domain.Guess

	var (
		status    string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&g.ID,
		&g.PuzzleID,
		&g.Text,
		&status,
		&g.Response,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Status = domain.GuessStatus(status)
	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// CreateGuess inserts a new guess. Text must already be normalized.
// Returns a DuplicateAnswerError when the same text was already submitted
// for the puzzle.
func (q *Queries) CreateGuess(ctx context.Context, g *domain.Guess) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO guesses (id, puzzle_id, text, status, response, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID,
		g.PuzzleID,
		g.Text,
		string(g.Status),
		g.Response,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.DuplicateAnswer("answer " + g.Text + " already submitted for this puzzle")
		}
		return err
	}
	return nil
}

// GetGuess retrieves a guess by ID.
func (q *Queries) GetGuess(ctx context.Context, guessID string) (*domain.Guess, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+guessColumns+` FROM guesses WHERE id = ?`, guessID)

	g, err := scanGuess(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("guess %q not found", guessID)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGuesses returns a puzzle's guesses in submission order.
func (q *Queries) ListGuesses(ctx context.Context, puzzleID string) ([]*domain.Guess, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+guessColumns+` FROM guesses
		WHERE puzzle_id = ?
		ORDER BY created_at ASC, id ASC`, puzzleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guesses := []*domain.Guess{}
	for rows.Next() {
		g, err := scanGuess(rows)
		if err != nil {
			return nil, err
		}
		guesses = append(guesses, g)
	}
	return guesses, rows.Err()
}

// ListOpenGuesses returns a hunt's guesses still awaiting a verdict,
// oldest first. Guesses on tombstoned puzzles are excluded.
func (q *Queries) ListOpenGuesses(ctx context.Context, huntID string) ([]*domain.Guess, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT g.id, g.puzzle_id, g.text, g.status, g.response, g.created_at, g.updated_at
		FROM guesses g
		JOIN puzzles p ON p.id = g.puzzle_id
		WHERE p.hunt_id = ? AND g.status IN (?, ?) AND p.deleted_at IS NULL
		ORDER BY g.created_at ASC, g.id ASC`,
		huntID, string(domain.GuessNew), string(domain.GuessSubmitted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guesses := []*domain.Guess{}
	for rows.Next() {
		g, err := scanGuess(rows)
		if err != nil {
			return nil, err
		}
		guesses = append(guesses, g)
	}
	return guesses, rows.Err()
}

// UpdateGuess persists guess field changes.
func (q *Queries) UpdateGuess(ctx context.Context, g *domain.Guess) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE guesses SET status = ?, response = ?, updated_at = ?
		WHERE id = ?`,
		string(g.Status),
		g.Response,
		formatTime(g.UpdatedAt),
		g.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFoundf("guess %q not found", g.ID)
	}
	return nil
}

// DeleteGuess removes a guess.
func (q *Queries) DeleteGuess(ctx context.Context, guessID string) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM guesses WHERE id = ?`, guessID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFoundf("guess %q not found", guessID)
	}
	return nil
}
