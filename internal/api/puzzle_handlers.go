package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/service"
)

func (s *Server) registerPuzzleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createPuzzle",
		Method:      http.MethodPost,
		Path:        "/api/v1/hunts/{huntId}/puzzles",
		Summary:     "Create puzzle",
		Description: "Creates a puzzle in a hunt. Creating a meta also creates its mirror tag.",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePuzzle)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPuzzles",
		Method:      http.MethodGet,
		Path:        "/api/v1/hunts/{huntId}/puzzles",
		Summary:     "List puzzles",
		Description: "Returns a hunt's live puzzles",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPuzzles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHuntTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/hunts/{huntId}/tree",
		Summary:     "Get hunt tree",
		Description: "Returns the hunt's display sequence with feeders nested under their metas. Shared feeders appear once per owning meta.",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetHuntTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPuzzle",
		Method:      http.MethodGet,
		Path:        "/api/v1/puzzles/{id}",
		Summary:     "Get puzzle",
		Description: "Returns a puzzle by ID",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPuzzle)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePuzzle",
		Method:      http.MethodPatch,
		Path:        "/api/v1/puzzles/{id}",
		Summary:     "Update puzzle",
		Description: "Updates a puzzle's name, URL, sheet reference, or notes",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePuzzle)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePuzzle",
		Method:      http.MethodDelete,
		Path:        "/api/v1/puzzles/{id}",
		Summary:     "Delete puzzle",
		Description: "Soft-deletes a puzzle, freeing its name and URL for reuse. Metas with feeders cannot be deleted.",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePuzzle)

	huma.Register(s.api, huma.Operation{
		OperationID: "restorePuzzle",
		Method:      http.MethodPost,
		Path:        "/api/v1/puzzles/{id}/restore",
		Summary:     "Restore puzzle",
		Description: "Restores a soft-deleted puzzle. Fails if its name or URL has been reused.",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestorePuzzle)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPuzzleStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/puzzles/{id}/status",
		Summary:     "Set puzzle status",
		Description: "Manually sets SOLVING or STUCK. SOLVED and PENDING are derived from guesses and cannot be set directly.",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPuzzleStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPuzzleMeta",
		Method:      http.MethodPut,
		Path:        "/api/v1/puzzles/{id}/meta",
		Summary:     "Promote or demote meta",
		Description: "Toggles a puzzle's meta flag, keeping its mirror tag in sync. Demotion fails while feeders remain.",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPuzzleMeta)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPuzzleMetas",
		Method:      http.MethodPut,
		Path:        "/api/v1/puzzles/{id}/metas",
		Summary:     "Set puzzle metas",
		Description: "Replaces the set of metas this puzzle feeds. The whole batch is rejected if any assignment would create a cycle.",
		Tags:        []string{"Puzzles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPuzzleMetas)
}

// === DTOs ===

// CreatePuzzleRequest is the request body for creating a puzzle.
type CreatePuzzleRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200" doc:"Puzzle name, unique within the hunt"`
	URL      string `json:"url" validate:"required,url" doc:"Puzzle page URL, unique within the hunt"`
	SheetRef string `json:"sheet_ref,omitempty" validate:"omitempty,max=500" doc:"External answer sheet reference"`
	Notes    string `json:"notes,omitempty" validate:"omitempty,max=2000" doc:"Free-form notes"`
	IsMeta   bool   `json:"is_meta,omitempty" doc:"Create as a meta puzzle"`
}

// CreatePuzzleInput wraps the create puzzle request for Huma.
type CreatePuzzleInput struct {
	Authorization string `header:"Authorization"`
	HuntID        string `path:"huntId" doc:"Hunt ID"`
	Body          CreatePuzzleRequest
}

// ListPuzzlesInput contains parameters for listing a hunt's puzzles.
type ListPuzzlesInput struct {
	Authorization string `header:"Authorization"`
	HuntID        string `path:"huntId" doc:"Hunt ID"`
}

// ListPuzzlesResponse contains a list of puzzles.
type ListPuzzlesResponse struct {
	Puzzles []PuzzleResponse `json:"puzzles" doc:"List of puzzles"`
}

// ListPuzzlesOutput wraps the list puzzles response for Huma.
type ListPuzzlesOutput struct {
	Body ListPuzzlesResponse
}

// TreeInput contains parameters for rendering the hunt tree.
type TreeInput struct {
	Authorization string `header:"Authorization"`
	HuntID        string `path:"huntId" doc:"Hunt ID"`
}

// TreeRowResponse is one row of the hunt's display sequence.
type TreeRowResponse struct {
	Puzzle   PuzzleResponse `json:"puzzle" doc:"The puzzle at this row"`
	ParentID string         `json:"parent_id,omitempty" doc:"Meta this row is nested under, empty for top-level rows"`
	Depth    int            `json:"depth" doc:"Nesting depth, zero for top-level rows"`
	Collapse bool           `json:"collapse" doc:"Hint that this solved branch should be folded by default"`
}

// TreeResponse contains the rendered hunt tree.
type TreeResponse struct {
	Rows []TreeRowResponse `json:"rows" doc:"Display sequence, top-level puzzles first"`
}

// TreeOutput wraps the tree response for Huma.
type TreeOutput struct {
	Body TreeResponse
}

// GetPuzzleInput contains parameters for getting a puzzle.
type GetPuzzleInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
}

// UpdatePuzzleRequest is the request body for updating a puzzle.
type UpdatePuzzleRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"New puzzle name"`
	URL      *string `json:"url,omitempty" validate:"omitempty,url" doc:"New puzzle URL"`
	SheetRef *string `json:"sheet_ref,omitempty" validate:"omitempty,max=500" doc:"New sheet reference"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=2000" doc:"New notes"`
}

// UpdatePuzzleInput wraps the update puzzle request for Huma.
type UpdatePuzzleInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
	Body          UpdatePuzzleRequest
}

// DeletePuzzleInput contains parameters for deleting a puzzle.
type DeletePuzzleInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
}

// RestorePuzzleInput contains parameters for restoring a puzzle.
type RestorePuzzleInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
}

// SetStatusRequest is the request body for setting puzzle status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SOLVING STUCK" doc:"New status, SOLVING or STUCK"`
}

// SetStatusInput wraps the set status request for Huma.
type SetStatusInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
	Body          SetStatusRequest
}

// SetMetaRequest is the request body for toggling the meta flag.
type SetMetaRequest struct {
	IsMeta bool `json:"is_meta" doc:"Whether the puzzle should be a meta"`
}

// SetMetaInput wraps the set meta request for Huma.
type SetMetaInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
	Body          SetMetaRequest
}

// SetMetasRequest is the request body for replacing meta assignments.
type SetMetasRequest struct {
	MetaIDs []string `json:"meta_ids" doc:"IDs of the metas this puzzle feeds"`
}

// SetMetasInput wraps the set metas request for Huma.
type SetMetasInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Puzzle ID"`
	Body          SetMetasRequest
}

// === Handlers ===

func (s *Server) handleCreatePuzzle(ctx context.Context, input *CreatePuzzleInput) (*PuzzleOutput, error) {
	if _, err := s.requireAccess(ctx, input.Authorization, input.HuntID); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	p, err := s.services.Puzzle.CreatePuzzle(ctx, input.HuntID, service.CreatePuzzleParams{
		Name:     input.Body.Name,
		URL:      input.Body.URL,
		SheetRef: input.Body.SheetRef,
		Notes:    input.Body.Notes,
		IsMeta:   input.Body.IsMeta,
	})
	if err != nil {
		return nil, err
	}

	return &PuzzleOutput{Body: toPuzzleResponse(p)}, nil
}

func (s *Server) handleListPuzzles(ctx context.Context, input *ListPuzzlesInput) (*ListPuzzlesOutput, error) {
	if _, err := s.requireAccess(ctx, input.Authorization, input.HuntID); err != nil {
		return nil, err
	}

	puzzles, err := s.services.Puzzle.ListPuzzles(ctx, input.HuntID)
	if err != nil {
		return nil, err
	}

	resp := make([]PuzzleResponse, len(puzzles))
	for i, p := range puzzles {
		resp[i] = toPuzzleResponse(p)
	}

	return &ListPuzzlesOutput{Body: ListPuzzlesResponse{Puzzles: resp}}, nil
}

func (s *Server) handleGetHuntTree(ctx context.Context, input *TreeInput) (*TreeOutput, error) {
	if _, err := s.requireAccess(ctx, input.Authorization, input.HuntID); err != nil {
		return nil, err
	}

	rows, err := s.services.Puzzle.GetTree(ctx, input.HuntID)
	if err != nil {
		return nil, err
	}

	resp := make([]TreeRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = TreeRowResponse{
			Puzzle:   toPuzzleResponse(row.Puzzle),
			ParentID: row.ParentID,
			Depth:    row.Depth,
			Collapse: row.Collapse,
		}
	}

	return &TreeOutput{Body: TreeResponse{Rows: resp}}, nil
}

func (s *Server) handleGetPuzzle(ctx context.Context, input *GetPuzzleInput) (*PuzzleOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	p, err := s.services.Puzzle.GetPuzzle(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := toPuzzleResponse(p)
	if resp.CorrectAnswers, err = s.services.Answer.CorrectAnswers(ctx, p.ID); err != nil {
		return nil, err
	}
	if resp.Backsolved, err = s.services.Puzzle.IsBacksolved(ctx, p.ID); err != nil {
		return nil, err
	}

	return &PuzzleOutput{Body: resp}, nil
}

func (s *Server) handleUpdatePuzzle(ctx context.Context, input *UpdatePuzzleInput) (*PuzzleOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	p, err := s.services.Puzzle.EditPuzzle(ctx, input.ID, service.EditPuzzleParams{
		URL:      input.Body.URL,
		SheetRef: input.Body.SheetRef,
		Notes:    input.Body.Notes,
	})
	if err != nil {
		return nil, err
	}

	if input.Body.Name != nil && *input.Body.Name != p.Name {
		p, err = s.services.Puzzle.RenamePuzzle(ctx, input.ID, *input.Body.Name)
		if err != nil {
			return nil, err
		}
	}

	return &PuzzleOutput{Body: toPuzzleResponse(p)}, nil
}

func (s *Server) handleDeletePuzzle(ctx context.Context, input *DeletePuzzleInput) (*MessageOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	if err := s.services.Puzzle.DeletePuzzle(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Puzzle deleted"}}, nil
}

func (s *Server) handleRestorePuzzle(ctx context.Context, input *RestorePuzzleInput) (*PuzzleOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	p, err := s.services.Puzzle.RestorePuzzle(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PuzzleOutput{Body: toPuzzleResponse(p)}, nil
}

func (s *Server) handleSetPuzzleStatus(ctx context.Context, input *SetStatusInput) (*PuzzleOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	p, err := s.services.Puzzle.SetStatus(ctx, input.ID, domain.PuzzleStatus(input.Body.Status))
	if err != nil {
		return nil, err
	}

	return &PuzzleOutput{Body: toPuzzleResponse(p)}, nil
}

func (s *Server) handleSetPuzzleMeta(ctx context.Context, input *SetMetaInput) (*PuzzleOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	p, err := s.services.Puzzle.SetMeta(ctx, input.ID, input.Body.IsMeta)
	if err != nil {
		return nil, err
	}

	return &PuzzleOutput{Body: toPuzzleResponse(p)}, nil
}

func (s *Server) handleSetPuzzleMetas(ctx context.Context, input *SetMetasInput) (*PuzzleOutput, error) {
	if _, err := s.requirePuzzleAccess(ctx, input.Authorization, input.ID); err != nil {
		return nil, err
	}

	p, err := s.services.Puzzle.SetMetas(ctx, input.ID, input.Body.MetaIDs)
	if err != nil {
		return nil, err
	}

	return &PuzzleOutput{Body: toPuzzleResponse(p)}, nil
}
