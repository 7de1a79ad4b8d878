package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPuzzles",
		Method:      http.MethodGet,
		Path:        "/api/v1/hunts/{huntId}/search",
		Summary:     "Search puzzles",
		Description: "Full-text search over a hunt's puzzle names, notes, answers, and tags",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchPuzzles)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexHunt",
		Method:      http.MethodPost,
		Path:        "/api/v1/hunts/{huntId}/search/reindex",
		Summary:     "Reindex hunt",
		Description: "Rebuilds the search index entries for every live puzzle in the hunt",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindexHunt)
}

// === DTOs ===

// SearchInput contains parameters for searching puzzles.
type SearchInput struct {
	Authorization string   `header:"Authorization"`
	HuntID        string   `path:"huntId" doc:"Hunt ID"`
	Query         string   `query:"q" doc:"Search query"`
	Status        string   `query:"status" doc:"Filter by puzzle status"`
	Tags          []string `query:"tags" doc:"Filter by tag names, OR across tags"`
	Limit         int      `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results to return"`
	Offset        int      `query:"offset" default:"0" minimum:"0" doc:"Results to skip"`
}

// SearchHitResponse is a single search result.
type SearchHitResponse struct {
	ID         string            `json:"id" doc:"Puzzle ID"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Name       string            `json:"name" doc:"Puzzle name"`
	Answer     string            `json:"answer,omitempty" doc:"Confirmed answer, if solved"`
	Status     string            `json:"status,omitempty" doc:"Puzzle status"`
	Tags       []string          `json:"tags,omitempty" doc:"Tag names"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted match fragments by field"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string              `json:"query" doc:"The query that was executed"`
	Total  uint64              `json:"total" doc:"Total matching puzzles"`
	TookMs int64               `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResponse `json:"hits" doc:"Matching puzzles, best first"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// ReindexInput contains parameters for reindexing a hunt.
type ReindexInput struct {
	Authorization string `header:"Authorization"`
	HuntID        string `path:"huntId" doc:"Hunt ID"`
}

// === Handlers ===

func (s *Server) handleSearchPuzzles(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := s.requireAccess(ctx, input.Authorization, input.HuntID); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.HuntID = input.HuntID
	params.Status = input.Status
	params.Tags = input.Tags
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResponse{
			ID:         h.ID,
			Score:      h.Score,
			Name:       h.Name,
			Answer:     h.Answer,
			Status:     h.Status,
			Tags:       h.Tags,
			Highlights: h.Highlights,
		}
	}

	return &SearchOutput{Body: SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}}, nil
}

func (s *Server) handleReindexHunt(ctx context.Context, input *ReindexInput) (*MessageOutput, error) {
	if _, err := s.requireAdmin(ctx, input.Authorization, input.HuntID); err != nil {
		return nil, err
	}

	if err := s.services.Search.ReindexHunt(ctx, input.HuntID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Reindex complete"}}, nil
}
