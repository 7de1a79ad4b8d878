// Package tree produces the ordered, duplication-aware display sequence
// for a hunt's puzzles. A puzzle assigned to several metas appears once
// under each of them: same identity, shown in multiple branches.
package tree

import (
	"sort"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/cardinalitypuzzles/cardboard-server/internal/graph"
)

// Row is one entry of the rendered display sequence.
type Row struct {
	Puzzle *domain.Puzzle `json:"puzzle"`
	// ParentID is the immediate meta this row is listed under, or "" for
	// puzzles listed at the top level.
	ParentID string `json:"parent_id,omitempty"`
	Depth    int    `json:"depth"`
	// Collapse hints that the UI should fold this branch by default: the
	// node is solved and so is its entire feeder subtree.
	Collapse bool `json:"collapse"`
}

// Render builds the display sequence: a virtual root owns every puzzle
// with zero metas, then a depth-first walk lists each meta's feeders
// beneath it. Children are ordered unsolved before solved, childless
// before metas with children, then by name for determinism.
func Render(puzzles []*domain.Puzzle, edges []graph.Edge) ([]Row, error) {
	byID := make(map[string]*domain.Puzzle, len(puzzles))
	for _, p := range puzzles {
		byID[p.ID] = p
	}

	dag := graph.New(edges)

	// Top level: puzzles with no metas.
	var roots []*domain.Puzzle
	for _, p := range puzzles {
		if len(dag.Metas(p.ID)) == 0 {
			roots = append(roots, p)
		}
	}

	solvedMemo := make(map[string]bool)

	r := &renderer{byID: byID, dag: dag, solvedMemo: solvedMemo, seen: make(map[string]bool)}
	sortChildren(roots, dag)

	rows := make([]Row, 0, len(puzzles))
	for _, p := range roots {
		var err error
		rows, err = r.walk(rows, p, "", 0, map[string]bool{})
		if err != nil {
			return nil, err
		}
	}

	// A puzzle the walk never reached sits on a cycle disconnected from
	// every root, which only a corrupt edge set can produce.
	for _, p := range puzzles {
		if !r.seen[p.ID] {
			return nil, errors.Internalf("meta relation contains a cycle through %q", p.Name)
		}
	}
	return rows, nil
}

type renderer struct {
	byID       map[string]*domain.Puzzle
	dag        *graph.DAG
	solvedMemo map[string]bool
	seen       map[string]bool
}

// walk appends p and its feeder subtree to rows. onPath guards against a
// corrupt (cyclic) edge set; the invariant engine never produces one, but
// rendering must not hang if the store does.
func (r *renderer) walk(rows []Row, p *domain.Puzzle, parentID string, depth int, onPath map[string]bool) ([]Row, error) {
	if onPath[p.ID] {
		return nil, errors.Internalf("meta relation contains a cycle through %q", p.Name)
	}
	onPath[p.ID] = true
	defer delete(onPath, p.ID)
	r.seen[p.ID] = true

	children := r.children(p.ID)

	rows = append(rows, Row{
		Puzzle:   p,
		ParentID: parentID,
		Depth:    depth,
		Collapse: len(children) > 0 && r.subtreeSolved(p.ID),
	})

	for _, c := range children {
		var err error
		rows, err = r.walk(rows, c, p.ID, depth+1, onPath)
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// children returns p's direct feeders in display order.
func (r *renderer) children(puzzleID string) []*domain.Puzzle {
	feederIDs := r.dag.Feeders(puzzleID)
	children := make([]*domain.Puzzle, 0, len(feederIDs))
	for _, id := range feederIDs {
		if p, ok := r.byID[id]; ok {
			children = append(children, p)
		}
	}
	sortChildren(children, r.dag)
	return children
}

// subtreeSolved reports whether the puzzle and its entire feeder subtree
// are solved. Memoized by puzzle identity, so shared feeders are computed
// once regardless of how many branches show them.
func (r *renderer) subtreeSolved(puzzleID string) bool {
	if v, ok := r.solvedMemo[puzzleID]; ok {
		return v
	}
	// Mark before recursing so a corrupt cyclic edge set terminates.
	r.solvedMemo[puzzleID] = false

	p, ok := r.byID[puzzleID]
	if !ok || !p.IsSolved() {
		return false
	}
	for _, feeder := range r.dag.Feeders(puzzleID) {
		if !r.subtreeSolved(feeder) {
			return false
		}
	}
	r.solvedMemo[puzzleID] = true
	return true
}

// sortChildren orders siblings: unsolved before solved, childless before
// metas with children, then by name.
func sortChildren(children []*domain.Puzzle, dag *graph.DAG) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsSolved() != b.IsSolved() {
			return !a.IsSolved()
		}
		aKids := len(dag.Feeders(a.ID)) > 0
		bKids := len(dag.Feeders(b.ID)) > 0
		if aKids != bKids {
			return !aKids
		}
		return a.Name < b.Name
	})
}
