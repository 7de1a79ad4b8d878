// Package notify defines the outward notification collaborators invoked
// after a mutation commits. Implementations are best-effort: failures are
// logged by callers and never affect the originating mutation.
package notify

import "context"

// Sink receives hunt activity notifications (chat announcements and the
// like). All methods are fire-and-forget; an implementation backed by an
// external service should tolerate the target resource being absent.
type Sink interface {
	NotifyTagAdded(ctx context.Context, puzzleID, tagName string) error
	NotifyTagRemoved(ctx context.Context, puzzleID, tagName string) error
	NotifyMetaChanged(ctx context.Context, puzzleID string) error
	NotifyAnswerChanged(ctx context.Context, puzzleID, oldAnswer, newAnswer string) error
	NotifyPuzzleSolved(ctx context.Context, puzzleID, answerText string) error
	NotifyPuzzleUnsolved(ctx context.Context, puzzleID string) error
	NotifyPuzzleRenamed(ctx context.Context, puzzleID, oldName, newName string) error
}

// DocumentSink renames external answer documents when a puzzle's computed
// display title changes. A no-op when the puzzle has no document.
type DocumentSink interface {
	RenameDocument(ctx context.Context, ref, newTitle string) error
}
