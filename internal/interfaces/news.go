package interfaces

import (
	"context"

	"stock-analysis-agent/internal/types"
)

type NewsSource interface {
	Name() string
	Fetch(ctx context.Context, query types.NewsQuery) ([]types.NewsArticle, error)
}

// NewsFetcher is the aggregate the orchestrator talks to. It never fails;
// an unreachable upstream yields an empty slice.
type NewsFetcher interface {
	Articles(ctx context.Context, query types.NewsQuery) []types.NewsArticle
}
