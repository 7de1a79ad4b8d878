package service

import (
	"context"
	"log/slog"
)

// Effect is a side effect deferred until the enclosing transaction commits:
// chat notifications, document renames, search index updates. Effects run
// exactly once, after commit; a rolled-back transaction discards them.
type Effect func(ctx context.Context) error

// effects collects the side effects of one mutation while its transaction
// is open.
type effects struct {
	list []Effect
}

func (e *effects) add(fn Effect) {
	e.list = append(e.list, fn)
}

// run executes the collected effects in order. By the time effects run the
// mutation is committed, so failures are logged and swallowed rather than
// surfaced to the caller.
func (e *effects) run(ctx context.Context, logger *slog.Logger) {
	for _, fn := range e.list {
		if err := fn(ctx); err != nil {
			logger.Warn("post-commit effect failed", "error", err)
		}
	}
}
