package interfaces

import (
	"context"

	"stock-analysis-agent/internal/types"
)

// Completer sends one prompt to a language model and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier scores article relevance and sentiment. Both calls always
// return a usable result; upstream failures are folded into the result.
type Classifier interface {
	ClassifyRelevance(ctx context.Context, title, snippet, ticker, companyName string) types.RelevanceResult
	ClassifySentiment(ctx context.Context, text, ticker string) types.SentimentResult
}
