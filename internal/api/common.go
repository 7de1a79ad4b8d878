package api

import (
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
)

// MessageResponse is a simple success message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// HuntResponse contains hunt data in API responses.
type HuntResponse struct {
	ID                 string    `json:"id" doc:"Hunt ID"`
	Name               string    `json:"name" doc:"Hunt name"`
	AnswerQueueEnabled bool      `json:"answer_queue_enabled" doc:"Whether guesses wait for an operator verdict"`
	CreatedAt          time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt          time.Time `json:"updated_at" doc:"Last update time"`
}

func toHuntResponse(h *domain.Hunt) HuntResponse {
	return HuntResponse{
		ID:                 h.ID,
		Name:               h.Name,
		AnswerQueueEnabled: h.AnswerQueueEnabled,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
}

// PuzzleResponse contains puzzle data in API responses.
type PuzzleResponse struct {
	ID        string     `json:"id" doc:"Puzzle ID"`
	HuntID    string     `json:"hunt_id" doc:"Owning hunt ID"`
	Name      string     `json:"name" doc:"Puzzle name"`
	URL       string     `json:"url" doc:"Puzzle page URL"`
	SheetRef  string     `json:"sheet_ref,omitempty" doc:"External answer sheet reference"`
	Notes     string     `json:"notes,omitempty" doc:"Free-form notes"`
	IsMeta    bool       `json:"is_meta" doc:"Whether this puzzle owns feeders"`
	Status    string     `json:"status" doc:"Solve status"`
	Answer    string     `json:"answer,omitempty" doc:"Most recent confirmed answer"`
	// CorrectAnswers and Backsolved are derived fields, populated only on
	// single-puzzle reads.
	CorrectAnswers []string `json:"correct_answers,omitempty" doc:"All confirmed answers in submission order"`
	Backsolved     bool     `json:"backsolved,omitempty" doc:"Whether the puzzle carries the backsolved tag"`
	CreatedAt time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time  `json:"updated_at" doc:"Last update time"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" doc:"Deletion time, if deleted"`
}

func toPuzzleResponse(p *domain.Puzzle) PuzzleResponse {
	return PuzzleResponse{
		ID:        p.ID,
		HuntID:    p.HuntID,
		Name:      p.Name,
		URL:       p.URL,
		SheetRef:  p.SheetRef,
		Notes:     p.Notes,
		IsMeta:    p.IsMeta,
		Status:    string(p.Status),
		Answer:    p.Answer,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: p.DeletedAt,
	}
}

// PuzzleOutput wraps a single puzzle response for Huma.
type PuzzleOutput struct {
	Body PuzzleResponse
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	HuntID    string    `json:"hunt_id" doc:"Owning hunt ID"`
	Name      string    `json:"name" doc:"Tag name"`
	Color     string    `json:"color" doc:"Display color"`
	IsMeta    bool      `json:"is_meta" doc:"Whether this tag mirrors a meta puzzle"`
	IsDefault bool      `json:"is_default" doc:"Whether this is a hunt-bootstrap tag"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func toTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		HuntID:    t.HuntID,
		Name:      t.Name,
		Color:     string(t.Color),
		IsMeta:    t.IsMeta,
		IsDefault: t.IsDefault,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// GuessResponse contains guess data in API responses.
type GuessResponse struct {
	ID        string    `json:"id" doc:"Guess ID"`
	PuzzleID  string    `json:"puzzle_id" doc:"Puzzle the guess was made against"`
	Text      string    `json:"text" doc:"Normalized guess text"`
	Status    string    `json:"status" doc:"Moderation status"`
	Response  string    `json:"response,omitempty" doc:"Operator response"`
	CreatedAt time.Time `json:"created_at" doc:"Submission time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func toGuessResponse(g *domain.Guess) GuessResponse {
	return GuessResponse{
		ID:        g.ID,
		PuzzleID:  g.PuzzleID,
		Text:      g.Text,
		Status:    string(g.Status),
		Response:  g.Response,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// GuessOutput wraps a single guess response for Huma.
type GuessOutput struct {
	Body GuessResponse
}
