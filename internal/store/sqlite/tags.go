package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, hunt_id, name, color, is_meta, is_default, created_at, updated_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		color     string
		isMeta    int
		isDefault int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.HuntID,
		&t.Name,
		&color,
		&isMeta,
		&isDefault,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Color = domain.TagColor(color)
	t.IsMeta = isMeta != 0
	t.IsDefault = isDefault != 0
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag.
// Returns a DuplicateIdentityError on a case-insensitive name collision.
func (q *Queries) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO tags (id, hunt_id, name, color, is_meta, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.HuntID,
		t.Name,
		string(t.Color),
		boolInt(t.IsMeta),
		boolInt(t.IsDefault),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.DuplicateIdentityf("tag %q already exists", t.Name)
		}
		return err
	}
	return nil
}

// GetTagByName retrieves a tag by name, case-insensitively.
func (q *Queries) GetTagByName(ctx context.Context, huntID, name string) (*domain.Tag, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE hunt_id = ? AND name = ?`, huntID, name)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("tag %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags in a hunt ordered by name.
func (q *Queries) ListTags(ctx context.Context, huntID string) ([]*domain.Tag, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE hunt_id = ? ORDER BY name ASC`, huntID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// UpdateTag persists tag field changes.
// Returns a DuplicateIdentityError on a name collision, as renames flow
// through here.
func (q *Queries) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE tags SET name = ?, color = ?, is_meta = ?, is_default = ?, updated_at = ?
		WHERE id = ?`,
		t.Name,
		string(t.Color),
		boolInt(t.IsMeta),
		boolInt(t.IsDefault),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.DuplicateIdentityf("tag %q already exists", t.Name)
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFoundf("tag %q not found", t.ID)
	}
	return nil
}

// DeleteTag removes a tag; puzzle associations cascade.
func (q *Queries) DeleteTag(ctx context.Context, tagID string) error {
	_, err := q.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	return err
}

// AttachTag associates a tag with a puzzle. Idempotent.
func (q *Queries) AttachTag(ctx context.Context, puzzleID, tagID string) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO puzzle_tags (puzzle_id, tag_id, created_at)
		VALUES (?, ?, ?)`,
		puzzleID, tagID, formatTime(time.Now()))
	return err
}

// DetachTag removes a tag from a puzzle. Idempotent.
func (q *Queries) DetachTag(ctx context.Context, puzzleID, tagID string) error {
	_, err := q.q.ExecContext(ctx,
		`DELETE FROM puzzle_tags WHERE puzzle_id = ? AND tag_id = ?`, puzzleID, tagID)
	return err
}

// ListTagsForPuzzle returns all tags on a puzzle ordered by name.
func (q *Queries) ListTagsForPuzzle(ctx context.Context, puzzleID string) ([]*domain.Tag, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT tags.id, tags.hunt_id, tags.name, tags.color, tags.is_meta, tags.is_default, tags.created_at, tags.updated_at
		FROM tags
		JOIN puzzle_tags pt ON pt.tag_id = tags.id
		WHERE pt.puzzle_id = ?
		ORDER BY tags.name ASC`, puzzleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListPuzzleIDsForTag returns the IDs of live puzzles carrying a tag.
func (q *Queries) ListPuzzleIDsForTag(ctx context.Context, tagID string) ([]string, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT pt.puzzle_id FROM puzzle_tags pt
		JOIN puzzles p ON p.id = pt.puzzle_id
		WHERE pt.tag_id = ? AND p.deleted_at IS NULL`, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountTagPuzzles returns the number of puzzle associations for a tag,
// tombstoned puzzles included. Reaping only considers total associations.
func (q *Queries) CountTagPuzzles(ctx context.Context, tagID string) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM puzzle_tags WHERE tag_id = ?`, tagID).Scan(&n)
	return n, err
}
