package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/cardinalitypuzzles/cardboard-server/internal/graph"
	"github.com/cardinalitypuzzles/cardboard-server/internal/id"
	"github.com/cardinalitypuzzles/cardboard-server/internal/notify"
	"github.com/cardinalitypuzzles/cardboard-server/internal/ratelimit"
	"github.com/cardinalitypuzzles/cardboard-server/internal/store/sqlite"
	"github.com/cardinalitypuzzles/cardboard-server/internal/tree"
)

// PuzzleService coordinates puzzle mutations so that every invariant holds
// when the transaction commits: meta puzzles and meta tags mirror each
// other by name, meta tag assignments and meta edges are the same relation,
// the meta relation stays acyclic, and empty non-default tags are reaped.
// Outward effects (notifications, document renames, search indexing) are
// collected during the transaction and run exactly once after commit.
type PuzzleService struct {
	store    *sqlite.Store
	search   *SearchService
	notifier notify.Sink
	docs     notify.DocumentSink
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewPuzzleService creates a new puzzle service.
func NewPuzzleService(
	store *sqlite.Store,
	search *SearchService,
	notifier notify.Sink,
	docs notify.DocumentSink,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *PuzzleService {
	return &PuzzleService{
		store:    store,
		search:   search,
		notifier: notifier,
		docs:     docs,
		limiter:  limiter,
		logger:   logger,
	}
}

// CreatePuzzleParams are the caller-supplied fields of a new puzzle.
type CreatePuzzleParams struct {
	Name     string
	URL      string
	SheetRef string
	Notes    string
	IsMeta   bool
}

// CreatePuzzle creates a puzzle. Creating a meta also creates its mirror
// tag; if a plain tag with the same name already exists it is promoted and
// its holders become feeders of the new meta.
func (s *PuzzleService) CreatePuzzle(ctx context.Context, huntID string, params CreatePuzzleParams) (*domain.Puzzle, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, errors.Validation("puzzle name is required")
	}
	if strings.TrimSpace(params.URL) == "" {
		return nil, errors.Validation("puzzle URL is required")
	}

	puzzleID, err := id.Generate("puz")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &domain.Puzzle{
		ID:        puzzleID,
		HuntID:    huntID,
		Name:      params.Name,
		URL:       params.URL,
		SheetRef:  params.SheetRef,
		Notes:     params.Notes,
		IsMeta:    params.IsMeta,
		Status:    domain.StatusSolving,
		CreatedAt: now,
		UpdatedAt: now,
	}

	fx := &effects{}
	err = s.store.InTx(ctx, func(q *sqlite.Queries) error {
		if _, err := q.GetHunt(ctx, huntID); err != nil {
			return err
		}
		if err := q.CreatePuzzle(ctx, p); err != nil {
			return err
		}
		if p.IsMeta {
			if err := s.promoteToMeta(ctx, q, p); err != nil {
				return err
			}
		}
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)

	s.logger.Info("puzzle created", "puzzle_id", p.ID, "name", p.Name, "is_meta", p.IsMeta)
	return p, nil
}

// GetPuzzle returns a live puzzle by ID.
func (s *PuzzleService) GetPuzzle(ctx context.Context, puzzleID string) (*domain.Puzzle, error) {
	return s.store.GetPuzzle(ctx, puzzleID)
}

// IsBacksolved reports whether the puzzle carries the reserved backsolved
// tag. The tag is assigned through the normal tag path; this only derives
// the predicate.
func (s *PuzzleService) IsBacksolved(ctx context.Context, puzzleID string) (bool, error) {
	tags, err := s.store.ListTagsForPuzzle(ctx, puzzleID)
	if err != nil {
		return false, err
	}
	for _, t := range tags {
		if t.IsBacksolved() {
			return true, nil
		}
	}
	return false, nil
}

// HuntIDForPuzzle returns the hunt a puzzle belongs to. Deleted puzzles
// resolve too, so restore can be scoped to the right hunt.
func (s *PuzzleService) HuntIDForPuzzle(ctx context.Context, puzzleID string) (string, error) {
	p, err := s.store.GetPuzzleIncludingDeleted(ctx, puzzleID)
	if err != nil {
		return "", err
	}
	return p.HuntID, nil
}

// ListPuzzles returns a hunt's live puzzles.
func (s *PuzzleService) ListPuzzles(ctx context.Context, huntID string) ([]*domain.Puzzle, error) {
	return s.store.ListPuzzles(ctx, huntID)
}

// ListTags returns a hunt's tags.
func (s *PuzzleService) ListTags(ctx context.Context, huntID string) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, huntID)
}

// ListTagsForPuzzle returns the tags on a puzzle.
func (s *PuzzleService) ListTagsForPuzzle(ctx context.Context, puzzleID string) ([]*domain.Tag, error) {
	return s.store.ListTagsForPuzzle(ctx, puzzleID)
}

// GetTree renders the hunt's display sequence: top-level puzzles first,
// each meta's feeders nested beneath it, shared feeders duplicated under
// every meta that owns them.
func (s *PuzzleService) GetTree(ctx context.Context, huntID string) ([]tree.Row, error) {
	puzzles, err := s.store.ListPuzzles(ctx, huntID)
	if err != nil {
		return nil, err
	}
	edges, err := s.store.ListMetaEdges(ctx, huntID)
	if err != nil {
		return nil, err
	}
	return tree.Render(puzzles, edges)
}

// RenamePuzzle renames a puzzle. A meta's mirror tag is renamed with it,
// and the external document picks up the new display title.
func (s *PuzzleService) RenamePuzzle(ctx context.Context, puzzleID, newName string) (*domain.Puzzle, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, errors.Validation("puzzle name is required")
	}

	var p *domain.Puzzle
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		p, err = q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}
		if p.Name == newName {
			return nil
		}
		oldName := p.Name

		if p.IsMeta {
			tag, err := q.GetTagByName(ctx, p.HuntID, oldName)
			if err == nil && tag.IsMeta {
				tag.Name = newName
				tag.UpdatedAt = time.Now()
				if err := q.UpdateTag(ctx, tag); err != nil {
					return err
				}
			} else if err != nil && !errors.Is(err, errors.ErrNotFound) {
				return err
			}
		}

		p.Name = newName
		p.UpdatedAt = time.Now()
		if err := q.UpdatePuzzle(ctx, p); err != nil {
			return err
		}

		guesses, err := q.ListGuesses(ctx, p.ID)
		if err != nil {
			return err
		}
		title := domain.DisplayTitle(newName, domain.CorrectAnswers(guesses))

		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyPuzzleRenamed(ctx, p.ID, oldName, newName)
		})
		if p.SheetRef != "" {
			ref := p.SheetRef
			fx.add(func(ctx context.Context) error {
				return s.docs.RenameDocument(ctx, ref, title)
			})
		}
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return p, nil
}

// EditPuzzleParams are the optional editable fields of a puzzle. Nil
// pointers leave the field unchanged.
type EditPuzzleParams struct {
	URL      *string
	SheetRef *string
	Notes    *string
}

// EditPuzzle updates a puzzle's non-identity fields.
func (s *PuzzleService) EditPuzzle(ctx context.Context, puzzleID string, params EditPuzzleParams) (*domain.Puzzle, error) {
	if params.URL != nil && strings.TrimSpace(*params.URL) == "" {
		return nil, errors.Validation("puzzle URL cannot be empty")
	}

	var p *domain.Puzzle
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		p, err = q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}
		if params.URL != nil {
			p.URL = *params.URL
		}
		if params.SheetRef != nil {
			p.SheetRef = *params.SheetRef
		}
		if params.Notes != nil {
			p.Notes = *params.Notes
		}
		p.UpdatedAt = time.Now()
		if err := q.UpdatePuzzle(ctx, p); err != nil {
			return err
		}
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return p, nil
}

// SetStatus sets a puzzle's status by hand. Only SOLVING and STUCK may be
// set directly; SOLVED and PENDING are derived from the guess set.
func (s *PuzzleService) SetStatus(ctx context.Context, puzzleID string, status domain.PuzzleStatus) (*domain.Puzzle, error) {
	if status != domain.StatusSolving && status != domain.StatusStuck {
		return nil, errors.Validationf("status %s is derived from guesses and cannot be set directly", status)
	}

	var p *domain.Puzzle
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		p, err = q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}
		if p.Status == status {
			return nil
		}
		if p.IsSolved() || p.Status == domain.StatusPending {
			return errors.Conflict("puzzle status is derived from its guesses")
		}
		p.Status = status
		p.UpdatedAt = time.Now()
		if err := q.UpdatePuzzle(ctx, p); err != nil {
			return err
		}
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return p, nil
}

// SetMeta promotes a puzzle to meta or demotes it back. Demotion requires
// the meta to have no live feeders.
func (s *PuzzleService) SetMeta(ctx context.Context, puzzleID string, isMeta bool) (*domain.Puzzle, error) {
	var p *domain.Puzzle
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		p, err = q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}
		if p.IsMeta == isMeta {
			return nil
		}

		p.IsMeta = isMeta
		p.UpdatedAt = time.Now()
		if err := q.UpdatePuzzle(ctx, p); err != nil {
			return err
		}

		if isMeta {
			if err := s.promoteToMeta(ctx, q, p); err != nil {
				return err
			}
		} else {
			if err := s.demoteFromMeta(ctx, q, p); err != nil {
				return err
			}
		}

		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyMetaChanged(ctx, p.ID)
		})
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return p, nil
}

// SetMetas replaces a puzzle's full meta assignment in one shot. The batch
// is all-or-nothing: any cycle or invalid target aborts the whole change.
func (s *PuzzleService) SetMetas(ctx context.Context, puzzleID string, metaIDs []string) (*domain.Puzzle, error) {
	var p *domain.Puzzle
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		p, err = q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}

		desired := make(map[string]bool, len(metaIDs))
		for _, m := range metaIDs {
			if m == p.ID {
				return errors.Cyclef("puzzle %q cannot feed itself", p.Name)
			}
			desired[m] = true
		}

		current, err := q.ListMetaIDs(ctx, p.ID)
		if err != nil {
			return err
		}
		currentSet := make(map[string]bool, len(current))
		for _, m := range current {
			currentSet[m] = true
		}

		dag, err := loadDAG(ctx, q, p.HuntID)
		if err != nil {
			return err
		}

		// Removals first so a swap of one meta for another never trips the
		// cycle check on stale edges.
		for _, metaID := range current {
			if desired[metaID] {
				continue
			}
			if err := s.removeEdgeAndTag(ctx, q, p, metaID); err != nil {
				return err
			}
			dag.RemoveEdge(p.ID, metaID)
		}

		for _, metaID := range metaIDs {
			if currentSet[metaID] {
				continue
			}
			meta, err := q.GetPuzzle(ctx, metaID)
			if err != nil {
				return err
			}
			if !meta.IsMeta {
				return errors.InvalidMetaOperationf("puzzle %q is not a meta", meta.Name)
			}
			if err := dag.AddEdge(p.ID, meta.ID); err != nil {
				return err
			}
			if err := q.InsertMetaEdge(ctx, p.HuntID, p.ID, meta.ID); err != nil {
				return err
			}
			if err := s.attachMetaTag(ctx, q, p, meta); err != nil {
				return err
			}
		}

		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyMetaChanged(ctx, p.ID)
		})
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return p, nil
}

// AddTag attaches a tag to a puzzle, creating the tag on first use.
// Attaching a meta tag assigns the puzzle to the meta of the same name,
// subject to the cycle check. Attaching one of the priority tags removes
// its opposite.
func (s *PuzzleService) AddTag(ctx context.Context, puzzleID, name string, color domain.TagColor) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("tag name is required")
	}
	if color == "" {
		color = domain.ColorPrimary
	}
	if !domain.ValidTagColor(color) {
		return nil, errors.Validationf("unknown tag color %q", color)
	}

	var tag *domain.Tag
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		p, err := q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}

		tag, err = q.GetTagByName(ctx, p.HuntID, name)
		if errors.Is(err, errors.ErrNotFound) {
			tagID, idErr := id.Generate("tag")
			if idErr != nil {
				return idErr
			}
			now := time.Now()
			tag = &domain.Tag{
				ID:        tagID,
				HuntID:    p.HuntID,
				Name:      name,
				Color:     color,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := q.CreateTag(ctx, tag); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		named, nameErr := q.GetPuzzleByName(ctx, p.HuntID, tag.Name)
		if nameErr != nil && !errors.Is(nameErr, errors.ErrNotFound) {
			return nameErr
		}
		if tag.IsMeta && named == nil {
			return errors.NotFoundf("meta puzzle %q not found", tag.Name)
		}
		if named != nil {
			dag, err := loadDAG(ctx, q, p.HuntID)
			if err != nil {
				return err
			}
			if tag.IsMeta {
				if err := dag.AddEdge(p.ID, named.ID); err != nil {
					return err
				}
				if err := q.InsertMetaEdge(ctx, p.HuntID, p.ID, named.ID); err != nil {
					return err
				}
				fx.add(func(ctx context.Context) error {
					return s.notifier.NotifyMetaChanged(ctx, p.ID)
				})
			} else {
				// A tag named after a live puzzle claims that puzzle as a
				// meta, so it may not point back into this puzzle's chain.
				ancestor, err := dag.IsAncestor(p.ID, named.ID)
				if err != nil {
					return err
				}
				if ancestor {
					return errors.Cyclef("cannot add tag %q: this puzzle is already an ancestor of %q", tag.Name, named.Name)
				}
			}
		}

		// High and low priority are mutually exclusive.
		if opposing := domain.OpposingTagName(name); opposing != "" {
			opp, err := q.GetTagByName(ctx, p.HuntID, opposing)
			if err == nil {
				if err := q.DetachTag(ctx, p.ID, opp.ID); err != nil {
					return err
				}
			} else if !errors.Is(err, errors.ErrNotFound) {
				return err
			}
		}

		if err := q.AttachTag(ctx, p.ID, tag.ID); err != nil {
			return err
		}

		tagName := tag.Name
		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyTagAdded(ctx, p.ID, tagName)
		})
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return tag, nil
}

// RemoveTag detaches a tag from a puzzle. Detaching a meta tag removes the
// meta edge; a non-default tag left with no puzzles is reaped.
func (s *PuzzleService) RemoveTag(ctx context.Context, puzzleID, name string) error {
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		p, err := q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}
		tag, err := q.GetTagByName(ctx, p.HuntID, name)
		if err != nil {
			return err
		}

		if tag.IsMeta {
			// A meta's own mirror tag tracks its meta flag, not an edge.
			if strings.EqualFold(tag.Name, p.Name) {
				return errors.InvalidMetaOperationf("cannot remove meta tag %q from its own puzzle, demote the puzzle instead", tag.Name)
			}
			meta, err := q.GetPuzzleByName(ctx, p.HuntID, tag.Name)
			if err == nil {
				if err := q.DeleteMetaEdge(ctx, p.ID, meta.ID); err != nil {
					return err
				}
				fx.add(func(ctx context.Context) error {
					return s.notifier.NotifyMetaChanged(ctx, p.ID)
				})
			} else if !errors.Is(err, errors.ErrNotFound) {
				return err
			}
		}

		if err := q.DetachTag(ctx, p.ID, tag.ID); err != nil {
			return err
		}

		// A non-default, non-meta tag with no assignments left is reaped.
		if !tag.IsDefault && !tag.IsMeta {
			n, err := q.CountTagPuzzles(ctx, tag.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				if err := q.DeleteTag(ctx, tag.ID); err != nil {
					return err
				}
			}
		}

		tagName := tag.Name
		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyTagRemoved(ctx, p.ID, tagName)
		})
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run(ctx, s.logger)
	return nil
}

// DeletePuzzle tombstones a puzzle. A meta with live feeders cannot be
// deleted. The puzzle's edges, tag assignments, and mirror tag are cleaned
// up; its name and URL become reusable immediately.
func (s *PuzzleService) DeletePuzzle(ctx context.Context, puzzleID string) error {
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		p, err := q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}

		if p.IsMeta {
			feeders, err := q.ListFeederIDs(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(feeders) > 0 {
				return errors.InvalidMetaOperationf("meta %q still has %d feeders", p.Name, len(feeders))
			}
			if err := s.demoteFromMeta(ctx, q, p); err != nil {
				return err
			}
		}

		// Drop the puzzle's own meta assignments.
		metas, err := q.ListMetaIDs(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, metaID := range metas {
			if err := q.DeleteMetaEdge(ctx, p.ID, metaID); err != nil {
				return err
			}
		}

		// Detach tags, reaping any left empty.
		tags, err := q.ListTagsForPuzzle(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, tag := range tags {
			if err := q.DetachTag(ctx, p.ID, tag.ID); err != nil {
				return err
			}
			if tag.IsDefault || tag.IsMeta {
				continue
			}
			n, err := q.CountTagPuzzles(ctx, tag.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				if err := q.DeleteTag(ctx, tag.ID); err != nil {
					return err
				}
			}
		}

		now := time.Now()
		p.DeletedAt = &now
		p.UpdatedAt = now
		if err := q.UpdatePuzzle(ctx, p); err != nil {
			return err
		}

		fx.add(func(ctx context.Context) error {
			if s.limiter != nil {
				s.limiter.Forget(p.ID)
			}
			if s.search != nil {
				return s.search.RemovePuzzle(p.ID)
			}
			return nil
		})
		return nil
	})
	if err != nil {
		return err
	}
	fx.run(ctx, s.logger)

	s.logger.Info("puzzle deleted", "puzzle_id", puzzleID)
	return nil
}

// RestorePuzzle clears a puzzle's tombstone. Restoring fails with a
// duplicate identity error if the name or URL has been reused since.
// A restored meta gets its mirror tag back; edges are not restored.
func (s *PuzzleService) RestorePuzzle(ctx context.Context, puzzleID string) (*domain.Puzzle, error) {
	var p *domain.Puzzle
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		p, err = q.GetPuzzleIncludingDeleted(ctx, puzzleID)
		if err != nil {
			return err
		}
		if !p.IsDeleted() {
			return nil
		}

		p.DeletedAt = nil
		p.UpdatedAt = time.Now()
		if err := q.UpdatePuzzle(ctx, p); err != nil {
			return err
		}

		if p.IsMeta {
			if err := s.promoteToMeta(ctx, q, p); err != nil {
				return err
			}
		}
		s.addReindex(fx, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return p, nil
}

// promoteToMeta establishes the mirror tag for a meta puzzle. An existing
// plain tag with the meta's name is promoted in place, and every puzzle
// already carrying it becomes a feeder.
func (s *PuzzleService) promoteToMeta(ctx context.Context, q *sqlite.Queries, p *domain.Puzzle) error {
	tag, err := q.GetTagByName(ctx, p.HuntID, p.Name)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		tagID, idErr := id.Generate("tag")
		if idErr != nil {
			return idErr
		}
		now := time.Now()
		tag = &domain.Tag{
			ID:        tagID,
			HuntID:    p.HuntID,
			Name:      p.Name,
			Color:     domain.ColorDark,
			IsMeta:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := q.CreateTag(ctx, tag); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if !tag.IsMeta {
			tag.IsMeta = true
			tag.Color = domain.ColorDark
			tag.UpdatedAt = time.Now()
			if err := q.UpdateTag(ctx, tag); err != nil {
				return err
			}
		}
	}

	// The meta carries its own mirror tag; that assignment marks the
	// meta flag and never maps to an edge.
	if err := q.AttachTag(ctx, p.ID, tag.ID); err != nil {
		return err
	}

	holders, err := q.ListPuzzleIDsForTag(ctx, tag.ID)
	if err != nil {
		return err
	}

	dag, err := loadDAG(ctx, q, p.HuntID)
	if err != nil {
		return err
	}
	for _, holder := range holders {
		if holder == p.ID {
			continue
		}
		if err := dag.AddEdge(holder, p.ID); err != nil {
			return err
		}
		if err := q.InsertMetaEdge(ctx, p.HuntID, holder, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// demoteFromMeta removes a meta's mirror tag. The caller guarantees the
// meta has no live feeders.
func (s *PuzzleService) demoteFromMeta(ctx context.Context, q *sqlite.Queries, p *domain.Puzzle) error {
	feeders, err := q.ListFeederIDs(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(feeders) > 0 {
		return errors.InvalidMetaOperationf("meta %q still has %d feeders", p.Name, len(feeders))
	}

	tag, err := q.GetTagByName(ctx, p.HuntID, p.Name)
	if errors.Is(err, errors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if tag.IsMeta && !tag.IsDefault {
		return q.DeleteTag(ctx, tag.ID)
	}
	return nil
}

// attachMetaTag attaches meta's mirror tag to p, keeping the tag relation
// in step with a directly-inserted edge.
func (s *PuzzleService) attachMetaTag(ctx context.Context, q *sqlite.Queries, p, meta *domain.Puzzle) error {
	tag, err := q.GetTagByName(ctx, p.HuntID, meta.Name)
	if err != nil {
		return err
	}
	return q.AttachTag(ctx, p.ID, tag.ID)
}

// removeEdgeAndTag removes the p-to-meta edge and the matching mirror tag
// assignment.
func (s *PuzzleService) removeEdgeAndTag(ctx context.Context, q *sqlite.Queries, p *domain.Puzzle, metaID string) error {
	if err := q.DeleteMetaEdge(ctx, p.ID, metaID); err != nil {
		return err
	}
	meta, err := q.GetPuzzle(ctx, metaID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	tag, err := q.GetTagByName(ctx, p.HuntID, meta.Name)
	if errors.Is(err, errors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return q.DetachTag(ctx, p.ID, tag.ID)
}

// addReindex queues a search index refresh for a puzzle.
func (s *PuzzleService) addReindex(fx *effects, puzzleID string) {
	if s.search == nil {
		return
	}
	fx.add(func(ctx context.Context) error {
		return s.search.IndexPuzzle(ctx, puzzleID)
	})
}

// loadDAG snapshots a hunt's meta relation from the store.
func loadDAG(ctx context.Context, q *sqlite.Queries, huntID string) (*graph.DAG, error) {
	edges, err := q.ListMetaEdges(ctx, huntID)
	if err != nil {
		return nil, err
	}
	return graph.New(edges), nil
}
