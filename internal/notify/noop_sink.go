package notify

import "context"

// NoopSink discards all notifications. Used in tests.
type NoopSink struct{}

// NewNoopSink creates a sink that does nothing.
func NewNoopSink() *NoopSink { return &NoopSink{} }

func (*NoopSink) NotifyTagAdded(context.Context, string, string) error             { return nil }
func (*NoopSink) NotifyTagRemoved(context.Context, string, string) error           { return nil }
func (*NoopSink) NotifyMetaChanged(context.Context, string) error                  { return nil }
func (*NoopSink) NotifyAnswerChanged(context.Context, string, string, string) error { return nil }
func (*NoopSink) NotifyPuzzleSolved(context.Context, string, string) error         { return nil }
func (*NoopSink) NotifyPuzzleUnsolved(context.Context, string) error               { return nil }
func (*NoopSink) NotifyPuzzleRenamed(context.Context, string, string, string) error { return nil }
func (*NoopSink) RenameDocument(context.Context, string, string) error             { return nil }
