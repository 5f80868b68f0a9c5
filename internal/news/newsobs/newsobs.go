package newsobs

import (
	"context"
	"time"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/metrics"
	"stock-analysis-agent/internal/trace"
	"stock-analysis-agent/internal/types"
)

// observableSource wraps a NewsSource with logging, tracing and metrics
type observableSource struct {
	source  interfaces.NewsSource
	metrics *metrics.Recorder
}

var _ interfaces.NewsSource = (*observableSource)(nil)

func Wrap(source interfaces.NewsSource, rec *metrics.Recorder) interfaces.NewsSource {
	return &observableSource{
		source:  source,
		metrics: rec,
	}
}

// WrapAll wraps every source, keeping their order.
func WrapAll(sources []interfaces.NewsSource, rec *metrics.Recorder) []interfaces.NewsSource {
	out := make([]interfaces.NewsSource, len(sources))
	for i, s := range sources {
		out[i] = Wrap(s, rec)
	}
	return out
}

func (ns *observableSource) Name() string {
	return ns.source.Name()
}

func (ns *observableSource) Fetch(ctx context.Context, q types.NewsQuery) ([]types.NewsArticle, error) {
	ctx, span := trace.StartSpan(ctx, "news.Fetch")
	defer span.End()
	span.SetAttributes(trace.Attributes("ticker", q.Ticker, "source", ns.source.Name(), "limit", q.Limit)...)

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Fetching news", "ticker", q.Ticker, "source", ns.source.Name())

	articles, err := ns.source.Fetch(ctx, q)
	if ns.metrics != nil {
		ns.metrics.RecordUpstream("news", ns.source.Name(), "Fetch", time.Since(start), err)
	}
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch news", err,
			"ticker", q.Ticker,
			"source", ns.source.Name(),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "News fetched",
		"ticker", q.Ticker,
		"source", ns.source.Name(),
		"articles", len(articles),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return articles, nil
}
