package sqlite

import (
	"context"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/graph"
)

// ListMetaEdges returns the full meta relation for a hunt.
// Edges touching tombstoned puzzles are excluded.
func (q *Queries) ListMetaEdges(ctx context.Context, huntID string) ([]graph.Edge, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT e.feeder_id, e.meta_id FROM meta_edges e
		JOIN puzzles f ON f.id = e.feeder_id
		JOIN puzzles m ON m.id = e.meta_id
		WHERE e.hunt_id = ? AND f.deleted_at IS NULL AND m.deleted_at IS NULL`, huntID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := []graph.Edge{}
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.FeederID, &e.MetaID); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// InsertMetaEdge persists a feeder-to-meta edge. Idempotent.
// Cycle checking happens against the in-memory DAG before this is called.
func (q *Queries) InsertMetaEdge(ctx context.Context, huntID, feederID, metaID string) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO meta_edges (hunt_id, feeder_id, meta_id, created_at)
		VALUES (?, ?, ?, ?)`,
		huntID, feederID, metaID, formatTime(time.Now()))
	return err
}

// DeleteMetaEdge removes a feeder-to-meta edge. Idempotent.
func (q *Queries) DeleteMetaEdge(ctx context.Context, feederID, metaID string) error {
	_, err := q.q.ExecContext(ctx,
		`DELETE FROM meta_edges WHERE feeder_id = ? AND meta_id = ?`, feederID, metaID)
	return err
}

// ListFeederIDs returns the IDs of live feeders assigned to a meta.
func (q *Queries) ListFeederIDs(ctx context.Context, metaID string) ([]string, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT e.feeder_id FROM meta_edges e
		JOIN puzzles f ON f.id = e.feeder_id
		WHERE e.meta_id = ? AND f.deleted_at IS NULL`, metaID)
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

// ListMetaIDs returns the IDs of live metas a feeder is assigned to.
func (q *Queries) ListMetaIDs(ctx context.Context, feederID string) ([]string, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT e.meta_id FROM meta_edges e
		JOIN puzzles m ON m.id = e.meta_id
		WHERE e.feeder_id = ? AND m.deleted_at IS NULL`, feederID)
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
