package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardinalitypuzzles/cardboard-server/internal/domain"
	"github.com/cardinalitypuzzles/cardboard-server/internal/errors"
	"github.com/cardinalitypuzzles/cardboard-server/internal/id"
	"github.com/cardinalitypuzzles/cardboard-server/internal/notify"
	"github.com/cardinalitypuzzles/cardboard-server/internal/ratelimit"
	"github.com/cardinalitypuzzles/cardboard-server/internal/store/sqlite"
)

// AnswerService runs the guess state machine. Puzzle status is never set
// directly here: every mutation rederives it from the full guess set, so
// the result is independent of the order guesses were judged in.
type AnswerService struct {
	store    *sqlite.Store
	search   *SearchService
	notifier notify.Sink
	docs     notify.DocumentSink
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	store *sqlite.Store,
	search *SearchService,
	notifier notify.Sink,
	docs notify.DocumentSink,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *AnswerService {
	return &AnswerService{
		store:    store,
		search:   search,
		notifier: notifier,
		docs:     docs,
		limiter:  limiter,
		logger:   logger,
	}
}

// SubmitGuess submits an answer attempt. The text is normalized before
// anything else; a normalized duplicate is rejected. With the hunt's
// answer queue enabled the guess waits for a verdict, otherwise it counts
// as correct immediately.
func (s *AnswerService) SubmitGuess(ctx context.Context, puzzleID, text string) (*domain.Guess, error) {
	normalized := domain.NormalizeAnswer(text)
	if normalized == "" {
		return nil, errors.Validation("answer is empty after normalization")
	}

	if s.limiter != nil && !s.limiter.Allow(puzzleID) {
		return nil, errors.RateLimited("too many guesses for this puzzle, slow down")
	}

	guessID, err := id.Generate("gss")
	if err != nil {
		return nil, err
	}

	var g *domain.Guess
	fx := &effects{}
	err = s.store.InTx(ctx, func(q *sqlite.Queries) error {
		p, err := q.GetPuzzle(ctx, puzzleID)
		if err != nil {
			return err
		}
		hunt, err := q.GetHunt(ctx, p.HuntID)
		if err != nil {
			return err
		}

		// Without the queue a submission is assumed correct, so another
		// guess against a solved puzzle is meaningless. With the queue a
		// guess on a solved puzzle is enqueued as informational.
		if !hunt.AnswerQueueEnabled && p.IsSolved() {
			return errors.Conflict("puzzle is already solved")
		}

		// NEW marks a guess nobody has looked at yet; an operator moves
		// it to SUBMITTED or a verdict. Without the queue the guess is
		// assumed correct outright.
		status := domain.GuessCorrect
		if hunt.AnswerQueueEnabled {
			status = domain.GuessNew
		}

		now := time.Now()
		g = &domain.Guess{
			ID:        guessID,
			PuzzleID:  p.ID,
			Text:      normalized,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := q.CreateGuess(ctx, g); err != nil {
			return err
		}

		return s.rederiveStatus(ctx, q, p, hunt.AnswerQueueEnabled, fx)
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)

	s.logger.Info("guess submitted", "puzzle_id", puzzleID, "guess_id", g.ID, "status", g.Status)
	return g, nil
}

// EditGuess records an operator verdict on a guess and rederives the
// puzzle's status.
func (s *AnswerService) EditGuess(ctx context.Context, guessID string, status domain.GuessStatus, response string) (*domain.Guess, error) {
	if !domain.ValidGuessStatus(status) {
		return nil, errors.Validationf("unknown guess status %q", status)
	}

	var g *domain.Guess
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		var err error
		g, err = q.GetGuess(ctx, guessID)
		if err != nil {
			return err
		}
		p, err := q.GetPuzzleIncludingDeleted(ctx, g.PuzzleID)
		if err != nil {
			return err
		}
		hunt, err := q.GetHunt(ctx, p.HuntID)
		if err != nil {
			return err
		}

		g.Status = status
		g.Response = response
		g.UpdatedAt = time.Now()
		if err := q.UpdateGuess(ctx, g); err != nil {
			return err
		}

		return s.rederiveStatus(ctx, q, p, hunt.AnswerQueueEnabled, fx)
	})
	if err != nil {
		return nil, err
	}
	fx.run(ctx, s.logger)
	return g, nil
}

// DeleteGuess removes a guess and rederives the puzzle's status. Deleting
// the only correct guess reverts the puzzle to SOLVING.
func (s *AnswerService) DeleteGuess(ctx context.Context, guessID string) error {
	fx := &effects{}
	err := s.store.InTx(ctx, func(q *sqlite.Queries) error {
		g, err := q.GetGuess(ctx, guessID)
		if err != nil {
			return err
		}
		p, err := q.GetPuzzleIncludingDeleted(ctx, g.PuzzleID)
		if err != nil {
			return err
		}
		hunt, err := q.GetHunt(ctx, p.HuntID)
		if err != nil {
			return err
		}

		if err := q.DeleteGuess(ctx, guessID); err != nil {
			return err
		}

		return s.rederiveStatus(ctx, q, p, hunt.AnswerQueueEnabled, fx)
	})
	if err != nil {
		return err
	}
	fx.run(ctx, s.logger)
	return nil
}

// CorrectAnswers returns the puzzle's confirmed answers in submission order.
func (s *AnswerService) CorrectAnswers(ctx context.Context, puzzleID string) ([]string, error) {
	guesses, err := s.store.ListGuesses(ctx, puzzleID)
	if err != nil {
		return nil, err
	}
	return domain.CorrectAnswers(guesses), nil
}

// GetGuess returns a single guess by ID.
func (s *AnswerService) GetGuess(ctx context.Context, guessID string) (*domain.Guess, error) {
	return s.store.GetGuess(ctx, guessID)
}

// ListGuesses returns a puzzle's guesses in submission order.
func (s *AnswerService) ListGuesses(ctx context.Context, puzzleID string) ([]*domain.Guess, error) {
	return s.store.ListGuesses(ctx, puzzleID)
}

// ListQueue returns a hunt's open guesses awaiting a verdict, oldest first.
func (s *AnswerService) ListQueue(ctx context.Context, huntID string) ([]*domain.Guess, error) {
	return s.store.ListOpenGuesses(ctx, huntID)
}

// rederiveStatus recomputes the puzzle's status and answer from the full
// guess set and queues the outward effects of any transition. A manual
// STUCK survives rederivation unless a guess event resolves the puzzle.
func (s *AnswerService) rederiveStatus(ctx context.Context, q *sqlite.Queries, p *domain.Puzzle, queueEnabled bool, fx *effects) error {
	guesses, err := q.ListGuesses(ctx, p.ID)
	if err != nil {
		return err
	}

	derived := domain.DerivePuzzleStatus(queueEnabled, guesses)
	if derived == domain.StatusSolving && p.Status == domain.StatusStuck {
		derived = domain.StatusStuck
	}

	correct := domain.CorrectAnswers(guesses)
	// The scalar answer field mirrors the most recent correct guess;
	// the full ordered list is served separately.
	newAnswer := ""
	if len(correct) > 0 {
		newAnswer = correct[len(correct)-1]
	}
	oldAnswer := p.Answer
	wasSolved := p.IsSolved()
	nowSolved := derived == domain.StatusSolved

	if derived != p.Status || newAnswer != p.Answer {
		p.Status = derived
		p.Answer = newAnswer
		p.UpdatedAt = time.Now()
		if err := q.UpdatePuzzle(ctx, p); err != nil {
			return err
		}
	}

	title := domain.DisplayTitle(p.Name, correct)
	puzzleID, sheetRef := p.ID, p.SheetRef

	switch {
	case nowSolved && !wasSolved:
		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyPuzzleSolved(ctx, puzzleID, newAnswer)
		})
	case wasSolved && !nowSolved:
		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyPuzzleUnsolved(ctx, puzzleID)
		})
	case wasSolved && nowSolved && oldAnswer != newAnswer:
		fx.add(func(ctx context.Context) error {
			return s.notifier.NotifyAnswerChanged(ctx, puzzleID, oldAnswer, newAnswer)
		})
	}

	if sheetRef != "" && (nowSolved != wasSolved || oldAnswer != newAnswer) {
		fx.add(func(ctx context.Context) error {
			return s.docs.RenameDocument(ctx, sheetRef, title)
		})
	}

	if s.search != nil {
		fx.add(func(ctx context.Context) error {
			return s.search.IndexPuzzle(ctx, puzzleID)
		})
	}
	return nil
}
