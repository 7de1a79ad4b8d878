package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHuntTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/hunts/{huntId}/tags",
		Summary:     "List hunt tags",
		Description: "Returns all tags in a hunt",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListHuntTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPuzzleTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/puzzles/{id}/tags",
		Summary:     "List puzzle tags",
		Description: "Returns the tags on a puzzle",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPuzzleTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "addPuzzleTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/puzzles/{id}/tags",
		Summary:     "Add tag to puzzle",
		Description: "Attaches a tag, creating it if needed. Adding a meta tag also adds the meta edge; a cycle rejects the whole operation.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddPuzzleTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "removePuzzleTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/puzzles/{id}/tags/{name}",
		Summary:     "Remove tag from puzzle",
		Description: "Detaches a tag. Removing a meta tag also removes the meta edge. Non-default tags left with no puzzles are deleted.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemovePuzzleTag)
}

// === DTOs ===

// ListHuntTagsInput contains parameters for listing a hunt's tags.
type ListHuntTagsInput struct {
	Authorization string `header:"Authorization"`
	HuntID        string `path:"huntId" doc:"Hunt ID"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// ListPuzzleTagsInput contains parameters for listing a puzzle's tags.
type ListPuzzleTagsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
}

// AddTagRequest is the request body for adding a tag to a puzzle.
type AddTagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100" doc:"Tag name"`
	Color string `json:"color,omitempty" validate:"omitempty,oneof=primary secondary success danger warning info light dark" doc:"Display color for newly created tags"`
}

// AddTagInput wraps the add tag request for Huma.
type AddTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
	Body          AddTagRequest
}

// TagOutput wraps a single tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// RemoveTagInput contains parameters for removing a tag from a puzzle.
type RemoveTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
	Name          string `path:"name" doc:"Tag name"`
}

// === Handlers ===

func (s *Server) handleListHuntTags(ctx context.Context, input *ListHuntTagsInput) (*ListTagsOutput, error) {
	if _, err := s.requireAccess(ctx, input.Authorization, input.HuntID); err != nil {
		return nil, err
	}

	tags, err := s.services.Puzzle.ListTags(ctx, input.HuntID)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = toTagResponse(t)
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleListPuzzleTags(ctx context.Context, input *ListPuzzleTagsInput) (*ListTagsOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	tags, err := s.services.Puzzle.ListTagsForPuzzle(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = toTagResponse(t)
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleAddPuzzleTag(ctx context.Context, input *AddTagInput) (*TagOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	t, err := s.services.Puzzle.AddTag(ctx, input.ID, input.Body.Name, domain.TagColor(input.Body.Color))
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleRemovePuzzleTag(ctx context.Context, input *RemoveTagInput) (*MessageOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	if err := s.services.Puzzle.RemoveTag(ctx, input.ID, input.Name); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag removed"}}, nil
}
