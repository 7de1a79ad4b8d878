package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
)

// huntColumns is the ordered list of columns selected in hunt queries.
// Must match the scan order in scanHunt.
const huntColumns = `id, name, answer_queue_enabled, created_at, updated_at`

func scanHunt(scanner interface{ Scan(dest ...any) error }) (*domain.Hunt, error) {
	var h domain.Hunt

	var (
		queueEnabled int
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(&h.ID, &h.Name, &queueEnabled, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	h.AnswerQueueEnabled = queueEnabled != 0
	h.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	h.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &h, nil
}

// CreateHunt inserts a new hunt.
// Returns a DuplicateIdentityError on a name collision.
func (q *Queries) CreateHunt(ctx context.Context, h *domain.Hunt) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO hunts (id, name, answer_queue_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		h.ID,
		h.Name,
		boolInt(h.AnswerQueueEnabled),
		formatTime(h.CreatedAt),
		formatTime(h.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.DuplicateIdentityf("hunt %q already exists", h.Name)
		}
		return err
	}
	return nil
}

// GetHunt retrieves a hunt by ID.
func (q *Queries) GetHunt(ctx context.Context, huntID string) (*domain.Hunt, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+huntColumns+` FROM hunts WHERE id = ?`, huntID)

	h, err := scanHunt(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("hunt %q not found", huntID)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ListHunts returns all hunts, newest first.
func (q *Queries) ListHunts(ctx context.Context) ([]*domain.Hunt, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+huntColumns+` FROM hunts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hunts := []*domain.Hunt{}
	for rows.Next() {
		h, err := scanHunt(rows)
		if err != nil {
			return nil, err
		}
		hunts = append(hunts, h)
	}
	return hunts, rows.Err()
}

// UpdateHunt persists hunt field changes.
func (q *Queries) UpdateHunt(ctx context.Context, h *domain.Hunt) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE hunts SET name = ?, answer_queue_enabled = ?, updated_at = ?
		WHERE id = ?`,
		h.Name,
		boolInt(h.AnswerQueueEnabled),
		formatTime(h.UpdatedAt),
		h.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFoundf("hunt %q not found", h.ID)
	}
	return nil
}
