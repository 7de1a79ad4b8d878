// Package search provides full-text search over puzzles using Bleve.
// Puzzle names, notes, tag names, and confirmed answers are indexed so a
// solver can find "that puzzle about trains" without scanning the board.
package search

import (
	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
)

// PuzzleDocument is the document structure for the Bleve index.
// Tag names and the answer are denormalized into the document so a single
// query covers everything a solver might remember about a puzzle.
type PuzzleDocument struct {
	ID     string `json:"id"`
	HuntID string `json:"hunt_id"`

	Name   string   `json:"name"`
	Notes  string   `json:"notes,omitempty"`
	Answer string   `json:"answer,omitempty"`
	Tags   []string `json:"tags,omitempty"`

	IsMeta bool   `json:"is_meta"`
	Status string `json:"status"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names (capitalized) but the index
// mapping uses lowercase names, so we convert explicitly.
func (d *PuzzleDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"hunt_id":    d.HuntID,
		"name":       d.Name,
		"is_meta":    d.IsMeta,
		"status":     d.Status,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Notes != "" {
		m["notes"] = d.Notes
	}
	if d.Answer != "" {
		m["answer"] = d.Answer
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// PuzzleToDocument converts a domain Puzzle to a PuzzleDocument.
// Tag names must be provided by the caller since the search package does
// not depend on the store.
func PuzzleToDocument(p *domain.Puzzle, tagNames []string) *PuzzleDocument {
	return &PuzzleDocument{
		ID:        p.ID,
		HuntID:    p.HuntID,
		Name:      p.Name,
		Notes:     p.Notes,
		Answer:    p.Answer,
		Tags:      tagNames,
		IsMeta:    p.IsMeta,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UnixMilli(),
		UpdatedAt: p.UpdatedAt.UnixMilli(),
	}
}
