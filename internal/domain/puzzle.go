package domain

import (
	"strings"
	"time"
)

// PuzzleStatus is the derived solve state of a puzzle.
type PuzzleStatus string

// Puzzle statuses.
const (
	StatusSolving PuzzleStatus = "SOLVING"
	StatusPending PuzzleStatus = "PENDING"
	StatusSolved  PuzzleStatus = "SOLVED"
	StatusStuck   PuzzleStatus = "STUCK"
)

// ValidPuzzleStatus reports whether s is a known puzzle status.
func ValidPuzzleStatus(s PuzzleStatus) bool {
	switch s {
	case StatusSolving, StatusPending, StatusSolved, StatusStuck:
		return true
	}
	return false
}

// Puzzle is a single puzzle within a hunt. Name is the case-sensitive
// identity key; URL is unique within the hunt as well. A puzzle with
// IsMeta set owns feeder puzzles through meta edges.
type Puzzle struct {
	ID     string `json:"id"`
	HuntID string `json:"hunt_id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	// SheetRef points at the external answer sheet, if one was provisioned.
	SheetRef string       `json:"sheet_ref,omitempty"`
	Notes    string       `json:"notes,omitempty"`
	IsMeta   bool         `json:"is_meta"`
	Status   PuzzleStatus `json:"status"`
	// Answer mirrors the most recent correct guess. The full ordered list
	// of correct answers is exposed separately.
	Answer    string     `json:"answer,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsSolved reports whether the puzzle is solved.
func (p *Puzzle) IsSolved() bool {
	return p.Status == StatusSolved
}

// IsDeleted reports whether the puzzle is tombstoned.
func (p *Puzzle) IsDeleted() bool {
	return p.DeletedAt != nil
}

// DerivePuzzleStatus recomputes a puzzle's status from its guess set.
// The derivation is idempotent and independent of mutation order:
// SOLVED iff at least one CORRECT guess exists; PENDING iff the answer
// queue is enabled and at least one open guess exists with no CORRECT
// guess; SOLVING otherwise.
func DerivePuzzleStatus(queueEnabled bool, guesses []*Guess) PuzzleStatus {
	open := false
	for _, g := range guesses {
		switch {
		case g.Status == GuessCorrect:
			return StatusSolved
		case g.Status.IsOpen():
			open = true
		}
	}
	if queueEnabled && open {
		return StatusPending
	}
	return StatusSolving
}

// CorrectAnswers returns the normalized texts of all CORRECT guesses in
// submission order.
func CorrectAnswers(guesses []*Guess) []string {
	var answers []string
	for _, g := range guesses {
		if g.Status == GuessCorrect {
			answers = append(answers, g.Text)
		}
	}
	return answers
}

// DisplayTitle computes the external document title for a puzzle:
// the puzzle name, prefixed with its solve label when solved.
func DisplayTitle(name string, correct []string) string {
	if len(correct) == 0 {
		return name
	}
	return "[SOLVED: " + strings.Join(correct, ", ") + "] " + name
}
