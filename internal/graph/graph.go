// Package graph implements the meta/feeder relation for one hunt as an
// explicit edge set over puzzle IDs. The relation is a DAG: a puzzle may
// feed many metas and a meta may own many feeders, but no puzzle may be
// its own ancestor.
package graph

import (
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
)

// maxVisits bounds the ancestor walk. Hunts top out at a few hundred
// puzzles; hitting this cap means the stored edge set is corrupt, so the
// walk fails closed instead of spinning.
const maxVisits = 100_000

// Edge is a single feeder-to-meta assignment.
type Edge struct {
	FeederID string
	MetaID   string
}

// DAG is the meta relation for one hunt, keyed by puzzle ID.
// It is a snapshot: load it from the store inside a transaction, mutate,
// and persist the resulting edge changes in the same transaction.
type DAG struct {
	// metas maps a feeder to its direct metas (its parents).
	metas map[string][]string
	// feeders maps a meta to its direct feeders (its children).
	feeders map[string][]string
}

// New builds a DAG from an edge list.
func New(edges []Edge) *DAG {
	d := &DAG{
		metas:   make(map[string][]string),
		feeders: make(map[string][]string),
	}
	for _, e := range edges {
		d.metas[e.FeederID] = append(d.metas[e.FeederID], e.MetaID)
		d.feeders[e.MetaID] = append(d.feeders[e.MetaID], e.FeederID)
	}
	return d
}

// Metas returns the direct metas of a puzzle.
func (d *DAG) Metas(puzzleID string) []string {
	return d.metas[puzzleID]
}

// Feeders returns the direct feeders of a meta.
func (d *DAG) Feeders(metaID string) []string {
	return d.feeders[metaID]
}

// HasEdge reports whether the feeder-to-meta edge exists.
func (d *DAG) HasEdge(feederID, metaID string) bool {
	for _, m := range d.metas[feederID] {
		if m == metaID {
			return true
		}
	}
	return false
}

// IsAncestor reports whether a is an ancestor of b: a == b, or a is a
// direct or indirect meta of b. The walk is an iterative DFS with a
// visited set, so diamond-shaped graphs (a node reachable via multiple
// paths) are visited once per node rather than once per path.
func (d *DAG) IsAncestor(a, b string) (bool, error) {
	if a == b {
		return true, nil
	}

	visited := map[string]bool{b: true}
	stack := []string{b}
	visits := 0

	for len(stack) > 0 {
		visits++
		if visits > maxVisits {
			return false, errors.Internalf("ancestor walk exceeded %d visits; meta relation is corrupt", maxVisits)
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, meta := range d.metas[node] {
			if meta == a {
				return true, nil
			}
			if !visited[meta] {
				visited[meta] = true
				stack = append(stack, meta)
			}
		}
	}

	return false, nil
}

// AddEdge inserts the feeder-to-meta edge, rejecting it with a CycleError
// when the meta is already a descendant of the feeder (equivalently, when
// the feeder is an ancestor of the meta). Adding an existing edge is a
// no-op.
func (d *DAG) AddEdge(feederID, metaID string) error {
	if d.HasEdge(feederID, metaID) {
		return nil
	}

	ancestor, err := d.IsAncestor(feederID, metaID)
	if err != nil {
		return err
	}
	if ancestor {
		return errors.Cyclef("cannot assign meta: the feeder is already an ancestor of the meta")
	}

	d.metas[feederID] = append(d.metas[feederID], metaID)
	d.feeders[metaID] = append(d.feeders[metaID], feederID)
	return nil
}

// RemoveEdge deletes the feeder-to-meta edge if present.
func (d *DAG) RemoveEdge(feederID, metaID string) {
	d.metas[feederID] = remove(d.metas[feederID], metaID)
	d.feeders[metaID] = remove(d.feeders[metaID], feederID)
}

// CanDelete reports whether a puzzle may be deleted or demoted from meta:
// a meta with feeders still assigned must be orphaned first.
func (d *DAG) CanDelete(puzzleID string, isMeta bool) bool {
	return !isMeta || len(d.feeders[puzzleID]) == 0
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
