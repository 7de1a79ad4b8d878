package notify

import (
	"context"
	"log/slog"
)

// SlogSink logs every notification. It stands in for chat and document
// integrations in development and keeps an audit trail in production
// alongside real sinks.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a logging notification sink.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) NotifyTagAdded(_ context.Context, puzzleID, tagName string) error {
	s.logger.Info("tag added", "puzzle_id", puzzleID, "tag", tagName)
	return nil
}

func (s *SlogSink) NotifyTagRemoved(_ context.Context, puzzleID, tagName string) error {
	s.logger.Info("tag removed", "puzzle_id", puzzleID, "tag", tagName)
	return nil
}

func (s *SlogSink) NotifyMetaChanged(_ context.Context, puzzleID string) error {
	s.logger.Info("meta assignments changed", "puzzle_id", puzzleID)
	return nil
}

func (s *SlogSink) NotifyAnswerChanged(_ context.Context, puzzleID, oldAnswer, newAnswer string) error {
	s.logger.Info("answer changed", "puzzle_id", puzzleID, "old", oldAnswer, "new", newAnswer)
	return nil
}

func (s *SlogSink) NotifyPuzzleSolved(_ context.Context, puzzleID, answerText string) error {
	s.logger.Info("puzzle solved", "puzzle_id", puzzleID, "answer", answerText)
	return nil
}

func (s *SlogSink) NotifyPuzzleUnsolved(_ context.Context, puzzleID string) error {
	s.logger.Info("puzzle unsolved", "puzzle_id", puzzleID)
	return nil
}

func (s *SlogSink) NotifyPuzzleRenamed(_ context.Context, puzzleID, oldName, newName string) error {
	s.logger.Info("puzzle renamed", "puzzle_id", puzzleID, "old", oldName, "new", newName)
	return nil
}

// RenameDocument logs the requested rename. SlogSink implements
// DocumentSink so a deployment without a sheets integration still works.
func (s *SlogSink) RenameDocument(_ context.Context, ref, newTitle string) error {
	s.logger.Info("document renamed", "ref", ref, "title", newTitle)
	return nil
}
