package service

import (
	"context"
	"log/slog"

	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/cardinalitypuzzles/cardboard-server/internal/search"
	"github.com/cardinalitypuzzles/cardboard-server/internal/store/sqlite"
)

// SearchService keeps the Bleve index in step with the store and answers
// queries. The store stays the source of truth: indexing happens after a
// mutation commits, and a lost update is repaired by ReindexHunt.
type SearchService struct {
	store  *sqlite.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store *sqlite.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// IndexPuzzle refreshes the index entry for one puzzle from the store.
// A puzzle that is gone or tombstoned is removed from the index.
func (s *SearchService) IndexPuzzle(ctx context.Context, puzzleID string) error {
	p, err := s.store.GetPuzzle(ctx, puzzleID)
	if errors.Is(err, errors.ErrNotFound) {
		return s.index.DeletePuzzle(puzzleID)
	}
	if err != nil {
		return err
	}

	tags, err := s.store.ListTagsForPuzzle(ctx, puzzleID)
	if err != nil {
		return err
	}
	tagNames := make([]string, 0, len(tags))
	for _, t := range tags {
		tagNames = append(tagNames, t.Name)
	}

	return s.index.IndexPuzzle(search.PuzzleToDocument(p, tagNames))
}

// RemovePuzzle drops a puzzle from the index.
func (s *SearchService) RemovePuzzle(puzzleID string) error {
	return s.index.DeletePuzzle(puzzleID)
}

// Search runs a query against the puzzle index.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 {
		params.Limit = search.DefaultParams().Limit
	}
	return s.index.Search(ctx, params)
}

// ReindexHunt rebuilds the index entries for every live puzzle in a hunt.
func (s *SearchService) ReindexHunt(ctx context.Context, huntID string) error {
	puzzles, err := s.store.ListPuzzles(ctx, huntID)
	if err != nil {
		return err
	}

	docs := make([]*search.PuzzleDocument, 0, len(puzzles))
	for _, p := range puzzles {
		tags, err := s.store.ListTagsForPuzzle(ctx, p.ID)
		if err != nil {
			return err
		}
		tagNames := make([]string, 0, len(tags))
		for _, t := range tags {
			tagNames = append(tagNames, t.Name)
		}
		docs = append(docs, search.PuzzleToDocument(p, tagNames))
	}

	if err := s.index.IndexPuzzles(docs); err != nil {
		return err
	}
	s.logger.Info("reindexed hunt", "hunt_id", huntID, "puzzles", len(docs))
	return nil
}
