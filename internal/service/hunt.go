package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/cardinalitypuzzles/cardboard-server/internal/id"
	"github.com/cardinalitypuzzles/cardboard-server/internal/store/sqlite"
)

// HuntService manages hunt lifecycle and hunt-level settings.
type HuntService struct {
	store  *sqlite.Store
	search *SearchService
	logger *slog.Logger
}

// NewHuntService creates a new hunt service.
func NewHuntService(store *sqlite.Store, search *SearchService, logger *slog.Logger) *HuntService {
	return &HuntService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// CreateHunt creates a hunt and bootstraps its default tags.
func (s *HuntService) CreateHunt(ctx context.Context, name string, answerQueueEnabled bool) (*domain.Hunt, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("hunt name is required")
	}

	huntID, err := id.Generate("hunt")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	hunt := &domain.Hunt{
		ID:                 huntID,
		Name:               name,
		AnswerQueueEnabled: answerQueueEnabled,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.store.InTx(ctx, func(q *sqlite.Queries) error {
		if err := q.CreateHunt(ctx, hunt); err != nil {
			return err
		}
		for _, t := range domain.DefaultTags() {
			tagID, err := id.Generate("tag")
			if err != nil {
				return err
			}
			tag := t
			tag.ID = tagID
			tag.HuntID = hunt.ID
			tag.CreatedAt = now
			tag.UpdatedAt = now
			if err := q.CreateTag(ctx, &tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("hunt created", "hunt_id", hunt.ID, "name", hunt.Name,
		"answer_queue_enabled", hunt.AnswerQueueEnabled)
	return hunt, nil
}

// GetHunt returns a hunt by ID.
func (s *HuntService) GetHunt(ctx context.Context, huntID string) (*domain.Hunt, error) {
	return s.store.GetHunt(ctx, huntID)
}

// ListHunts returns all hunts.
func (s *HuntService) ListHunts(ctx context.Context) ([]*domain.Hunt, error) {
	return s.store.ListHunts(ctx)
}

// SetAnswerQueueEnabled toggles the guess moderation queue for a hunt.
// Puzzle statuses that depend on the queue (PENDING vs SOLVING) are
// recomputed for every live puzzle in the same transaction.
func (s *HuntService) SetAnswerQueueEnabled(ctx context.Context, huntID string, enabled bool) (*domain.Hunt, error) {
	var hunt *domain.Hunt

	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		hunt, err = q.GetHunt(ctx, huntID)
		if err != nil {
			return err
		}
		if hunt.AnswerQueueEnabled == enabled {
			return nil
		}

		hunt.AnswerQueueEnabled = enabled
		hunt.UpdatedAt = time.Now()
		if err := q.UpdateHunt(ctx, hunt); err != nil {
			return err
		}

		puzzles, err := q.ListPuzzles(ctx, huntID)
		if err != nil {
			return err
		}
		for _, p := range puzzles {
			guesses, err := q.ListGuesses(ctx, p.ID)
			if err != nil {
				return err
			}
			derived := domain.DerivePuzzleStatus(enabled, guesses)
			if derived == domain.StatusSolving && p.Status == domain.StatusStuck {
				derived = domain.StatusStuck
			}
			if derived == p.Status {
				continue
			}
			p.Status = derived
			p.UpdatedAt = time.Now()
			if err := q.UpdatePuzzle(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.ReindexHunt(ctx, huntID); err != nil {
			s.logger.Warn("reindex after queue toggle failed", "hunt_id", huntID, "error", err)
		}
	}

	s.logger.Info("answer queue toggled", "hunt_id", huntID, "enabled", enabled)
	return hunt, nil
}
