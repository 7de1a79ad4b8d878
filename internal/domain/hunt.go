package domain

import "time"

// Hunt is a timed puzzle event. Every puzzle, tag, and guess belongs to
// exactly one hunt.
type Hunt struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// AnswerQueueEnabled turns on the guess moderation queue: submitted
	// guesses wait for an operator verdict instead of counting as correct
	// immediately.
	AnswerQueueEnabled bool      `json:"answer_queue_enabled"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
