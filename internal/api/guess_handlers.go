package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
)

func (s *Server) registerGuessRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "submitGuess",
		Method:      http.MethodPost,
		Path:        "/api/v1/puzzles/{id}/guesses",
		Summary:     "Submit guess",
		Description: "Submits an answer guess. Without the answer queue the guess is marked correct immediately; with it the guess waits for an operator verdict.",
		Tags:        []string{"Guesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSubmitGuess)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGuesses",
		Method:      http.MethodGet,
		Path:        "/api/v1/puzzles/{id}/guesses",
		Summary:     "List guesses",
		Description: "Returns a puzzle's guesses in submission order",
		Tags:        []string{"Guesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListGuesses)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAnswerQueue",
		Method:      http.MethodGet,
		Path:        "/api/v1/hunts/{huntId}/queue",
		Summary:     "List answer queue",
		Description: "Returns the hunt's open guesses awaiting a verdict, oldest first",
		Tags:        []string{"Guesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAnswerQueue)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGuess",
		Method:      http.MethodPut,
		Path:        "/api/v1/guesses/{id}",
		Summary:     "Record guess verdict",
		Description: "Sets a guess's status and operator response, rederiving the puzzle's status",
		Tags:        []string{"Guesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateGuess)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGuess",
		Method:      http.MethodDelete,
		Path:        "/api/v1/guesses/{id}",
		Summary:     "Delete guess",
		Description: "Deletes a guess, rederiving the puzzle's status. Deleting the only correct guess unsolves the puzzle.",
		Tags:        []string{"Guesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteGuess)
}

// === DTOs ===

// SubmitGuessRequest is the request body for submitting a guess.
type SubmitGuessRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500" doc:"Guess text, normalized before storage"`
}

// SubmitGuessInput wraps the submit guess request for Huma.
type SubmitGuessInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
	Body          SubmitGuessRequest
}

// ListGuessesInput contains parameters for listing a puzzle's guesses.
type ListGuessesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
}

// ListGuessesResponse contains a list of guesses.
type ListGuessesResponse struct {
	Guesses []GuessResponse `json:"guesses" doc:"List of guesses"`
}

// ListGuessesOutput wraps the list guesses response for Huma.
type ListGuessesOutput struct {
	Body ListGuessesResponse
}

// ListQueueInput contains parameters for listing the answer queue.
type ListQueueInput struct {
	Authorization string `header:"Authorization"`
	HuntID        string `path:"huntId" doc:"Hunt ID"`
}

// UpdateGuessRequest is the request body for recording a verdict.
type UpdateGuessRequest struct {
	Status   string `json:"status" validate:"required,oneof=NEW SUBMITTED CORRECT INCORRECT PARTIAL" doc:"New guess status"`
	Response string `json:"response,omitempty" validate:"omitempty,max=1000" doc:"Operator response"`
}

// UpdateGuessInput wraps the update guess request for Huma.
type UpdateGuessInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Guess ID"`
	Body          UpdateGuessRequest
}

// DeleteGuessInput contains parameters for deleting a guess.
type DeleteGuessInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Guess ID"`
}

// === Handlers ===

func (s *Server) handleSubmitGuess(ctx context.Context, input *SubmitGuessInput) (*GuessOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	g, err := s.services.Answer.SubmitGuess(ctx, input.ID, input.Body.Text)
	if err != nil {
		return nil, err
	}

	return &GuessOutput{Body: toGuessResponse(g)}, nil
}

func (s *Server) handleListGuesses(ctx context.Context, input *ListGuessesInput) (*ListGuessesOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	guesses, err := s.services.Answer.ListGuesses(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]GuessResponse, len(guesses))
	for i, g := range guesses {
		resp[i] = toGuessResponse(g)
	}

	return &ListGuessesOutput{Body: ListGuessesResponse{Guesses: resp}}, nil
}

func (s *Server) handleListAnswerQueue(ctx context.Context, input *ListQueueInput) (*ListGuessesOutput, error) {
	if _, err := s.requireAdmin(ctx, input.Authorization, input.HuntID); err != nil {
		return nil, err
	}

	guesses, err := s.services.Answer.ListQueue(ctx, input.HuntID)
	if err != nil {
		return nil, err
	}

	resp := make([]GuessResponse, len(guesses))
	for i, g := range guesses {
		resp[i] = toGuessResponse(g)
	}

	return &ListGuessesOutput{Body: ListGuessesResponse{Guesses: resp}}, nil
}

func (s *Server) handleUpdateGuess(ctx context.Context, input *UpdateGuessInput) (*GuessOutput, error) {
	g, err := s.services.Answer.GetGuess(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	huntID, err := s.services.Puzzle.HuntIDForPuzzle(ctx, g.PuzzleID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireAdmin(ctx, input.Authorization, huntID); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	g, err = s.services.Answer.EditGuess(ctx, input.ID, domain.GuessStatus(input.Body.Status), input.Body.Response)
	if err != nil {
		return nil, err
	}

	return &GuessOutput{Body: toGuessResponse(g)}, nil
}

func (s *Server) handleDeleteGuess(ctx context.Context, input *DeleteGuessInput) (*MessageOutput, error) {
	g, err := s.services.Answer.GetGuess(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	huntID, err := s.services.Puzzle.HuntIDForPuzzle(ctx, g.PuzzleID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireAdmin(ctx, input.Authorization, huntID); err != nil {
		return nil, err
	}

	if err := s.services.Answer.DeleteGuess(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Guess deleted"}}, nil
}
