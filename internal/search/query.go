package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a puzzle search.
type Params struct {
	Query  string // User's search query
	HuntID string // Restrict to one hunt (empty = all)

	// Filters
	Status string // Filter by exact status (empty = all)
	Tags   []string

	// Pagination
	Limit  int
	Offset int
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:  20,
		Offset: 0,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single search result.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Answer     string            `json:"answer,omitempty"`
	Status     string            `json:"status,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.SortBy([]string{"-_score"})

	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.AddField("name")
	searchRequest.Highlight.AddField("notes")

	searchRequest.Fields = []string{"id", "name", "answer", "status", "tags"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if a, ok := hit.Fields["answer"].(string); ok {
			searchHit.Answer = a
		}
		if st, ok := hit.Fields["status"].(string); ok {
			searchHit.Status = st
		}
		switch tags := hit.Fields["tags"].(type) {
		case string:
			searchHit.Tags = []string{tags}
		case []interface{}:
			for _, tag := range tags {
				if name, ok := tag.(string); ok {
					searchHit.Tags = append(searchHit.Tags, name)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		notesMatch := bleve.NewMatchQuery(params.Query)
		notesMatch.SetField("notes")
		textQueries = append(textQueries, notesMatch)

		// Answers are indexed uppercase, match case-insensitively
		answerMatch := bleve.NewTermQuery(strings.ToUpper(params.Query))
		answerMatch.SetField("answer")
		answerMatch.SetBoost(2.0)
		textQueries = append(textQueries, answerMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.HuntID != "" {
		hq := bleve.NewTermQuery(params.HuntID)
		hq.SetField("hunt_id")
		queries = append(queries, hq)
	}

	if params.Status != "" {
		sq := bleve.NewTermQuery(params.Status)
		sq.SetField("status")
		queries = append(queries, sq)
	}

	// Tag filter, OR across tags
	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, tag := range params.Tags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
