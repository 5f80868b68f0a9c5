package noop

import (
	"context"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/llm"
	"stock-analysis-agent/internal/logger"
)

// NoopCompleter is used when no LLM provider is configured. Every call fails
// with llm.ErrNotConfigured, which the classifier folds into low relevance.
type NoopCompleter struct{}

var _ interfaces.Completer = NoopCompleter{}

func NewNoopCompleter() NoopCompleter {
	return NoopCompleter{}
}

func (NoopCompleter) Complete(ctx context.Context, _ string) (string, error) {
	logger.Debug(ctx, "Noop completer called - no LLM provider configured")
	return "", llm.ErrNotConfigured
}
