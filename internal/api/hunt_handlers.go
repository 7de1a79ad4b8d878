package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHuntRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createHunt",
		Method:      http.MethodPost,
		Path:        "/api/v1/hunts",
		Summary:     "Create hunt",
		Description: "Creates a new hunt with its default tags",
		Tags:        []string{"Hunts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateHunt)

	huma.Register(s.api, huma.Operation{
		OperationID: "listHunts",
		Method:      http.MethodGet,
		Path:        "/api/v1/hunts",
		Summary:     "List hunts",
		Description: "Returns all hunts",
		Tags:        []string{"Hunts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListHunts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHunt",
		Method:      http.MethodGet,
		Path:        "/api/v1/hunts/{id}",
		Summary:     "Get hunt",
		Description: "Returns a hunt by ID",
		Tags:        []string{"Hunts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetHunt)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateHunt",
		Method:      http.MethodPatch,
		Path:        "/api/v1/hunts/{id}",
		Summary:     "Update hunt",
		Description: "Updates hunt settings. Toggling the answer queue rederives every puzzle's status.",
		Tags:        []string{"Hunts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateHunt)
}

// === DTOs ===

// CreateHuntRequest is the request body for creating a hunt.
type CreateHuntRequest struct {
	Name               string `json:"name" validate:"required,min=1,max=200" doc:"Hunt name"`
	AnswerQueueEnabled bool   `json:"answer_queue_enabled,omitempty" doc:"Enable the guess moderation queue"`
}

// CreateHuntInput wraps the create hunt request for Huma.
type CreateHuntInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateHuntRequest
}

// HuntOutput wraps a single hunt response for Huma.
type HuntOutput struct {
	Body HuntResponse
}

// ListHuntsInput contains parameters for listing hunts.
type ListHuntsInput struct {
	Authorization string `header:"Authorization"`
}

// ListHuntsResponse contains a list of hunts.
type ListHuntsResponse struct {
	Hunts []HuntResponse `json:"hunts" doc:"List of hunts"`
}

// ListHuntsOutput wraps the list hunts response for Huma.
type ListHuntsOutput struct {
	Body ListHuntsResponse
}

// GetHuntInput contains parameters for getting a hunt.
type GetHuntInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Hunt ID"`
}

// UpdateHuntRequest is the request body for updating a hunt.
type UpdateHuntRequest struct {
	AnswerQueueEnabled *bool `json:"answer_queue_enabled,omitempty" doc:"Enable or disable the guess moderation queue"`
}

// UpdateHuntInput wraps the update hunt request for Huma.
type UpdateHuntInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Hunt ID"`
	Body          UpdateHuntRequest
}

// === Handlers ===

func (s *Server) handleCreateHunt(ctx context.Context, input *CreateHuntInput) (*HuntOutput, error) {
	if _, err := s.requireAdmin(ctx, input.Authorization, ""); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	h, err := s.services.Hunt.CreateHunt(ctx, input.Body.Name, input.Body.AnswerQueueEnabled)
	if err != nil {
		return nil, err
	}

	return &HuntOutput{Body: toHuntResponse(h)}, nil
}

func (s *Server) handleListHunts(ctx context.Context, input *ListHuntsInput) (*ListHuntsOutput, error) {
	if _, err := s.requireAccess(ctx, input.Authorization, ""); err != nil {
		return nil, err
	}

	hunts, err := s.services.Hunt.ListHunts(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]HuntResponse, len(hunts))
	for i, h := range hunts {
		resp[i] = toHuntResponse(h)
	}

	return &ListHuntsOutput{Body: ListHuntsResponse{Hunts: resp}}, nil
}

func (s *Server) handleGetHunt(ctx context.Context, input *GetHuntInput) (*HuntOutput, error) {
	if _, err := s.requireAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	h, err := s.services.Hunt.GetHunt(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &HuntOutput{Body: toHuntResponse(h)}, nil
}

func (s *Server) handleUpdateHunt(ctx context.Context, input *UpdateHuntInput) (*HuntOutput, error) {
	if _, err := s.requireAdmin(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	h, err := s.services.Hunt.GetHunt(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Body.AnswerQueueEnabled != nil && *input.Body.AnswerQueueEnabled != h.AnswerQueueEnabled {
		h, err = s.services.Hunt.SetAnswerQueueEnabled(ctx, input.ID, *input.Body.AnswerQueueEnabled)
		if err != nil {
			return nil, err
		}
	}

	return &HuntOutput{Body: toHuntResponse(h)}, nil
}
