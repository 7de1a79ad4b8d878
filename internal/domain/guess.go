package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GuessStatus is the moderation state of a submitted guess.
type GuessStatus string

// Guess statuses. NEW and SUBMITTED are open (awaiting a verdict);
// CORRECT, INCORRECT, and PARTIAL are operator verdicts.
const (
	GuessNew       GuessStatus = "NEW"
	GuessSubmitted GuessStatus = "SUBMITTED"
	GuessCorrect   GuessStatus = "CORRECT"
	GuessIncorrect GuessStatus = "INCORRECT"
	GuessPartial   GuessStatus = "PARTIAL"
)

// IsOpen reports whether the guess is still awaiting a verdict.
func (s GuessStatus) IsOpen() bool {
	return s == GuessNew || s == GuessSubmitted
}

// ValidGuessStatus reports whether s is a known guess status.
func ValidGuessStatus(s GuessStatus) bool {
	switch s {
	case GuessNew, GuessSubmitted, GuessCorrect, GuessIncorrect, GuessPartial:
		return true
	}
	return false
}

// Guess is one submitted answer attempt against a puzzle. Text is stored
// normalized; the same normalized text may only be submitted once per puzzle.
type Guess struct {
	ID       string      `json:"id"`
	PuzzleID string      `json:"puzzle_id"`
	Text     string      `json:"text"`
	Status   GuessStatus `json:"status"`
	// Response carries the operator's notes on the verdict, or the hunt
	// site's canned reply for partial answers.
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// upper handles Unicode case mapping without locale-specific surprises.
var upper = cases.Upper(language.Und)

// NormalizeAnswer canonicalizes guess text: all whitespace is removed and
// the remainder is upper-cased. An answer that normalizes to the empty
// string is invalid.
func NormalizeAnswer(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return upper.String(stripped)
}
