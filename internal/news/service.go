package news

import (
	"context"
	"errors"
	"strconv"
	"time"

	"stock-analysis-agent/internal/cache"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/types"
)

// Service walks its sources in order and returns the first non-empty batch.
// Results are cached per ticker.
type Service struct {
	sources []interfaces.NewsSource
	cache   cache.Cache
	cfg     *ServiceConfig
}

var _ interfaces.NewsFetcher = (*Service)(nil)

// ServiceConfig configures the news service
type ServiceConfig struct {
	MaxArticles   int           // Articles requested from each source
	CacheDuration time.Duration // How long a fetched batch is reused
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:   10,
		CacheDuration: 30 * time.Minute,
	}
}

// NewService creates a news service. A nil cache disables caching.
func NewService(sources []interfaces.NewsSource, c cache.Cache, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{sources: sources, cache: c, cfg: cfg}
}

// Sources lists the configured source names in fallback order.
func (s *Service) Sources() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// Articles never fails; when every source errors or comes back empty the
// result is an empty slice.
func (s *Service) Articles(ctx context.Context, q types.NewsQuery) []types.NewsArticle {
	if q.Limit <= 0 {
		q.Limit = s.cfg.MaxArticles
	}
	key := cache.Key("news", q.Ticker, strconv.Itoa(q.Limit))

	articles, err := cache.GetOrLoad(ctx, s.cache, key, s.cfg.CacheDuration, func(ctx context.Context) ([]types.NewsArticle, error) {
		return s.fetch(ctx, q)
	})
	if err != nil {
		if !errors.Is(err, ErrNoArticles) {
			logger.Warn(ctx, "News unavailable", "ticker", q.Ticker, "error", err)
		}
		return []types.NewsArticle{}
	}
	return articles
}

func (s *Service) fetch(ctx context.Context, q types.NewsQuery) ([]types.NewsArticle, error) {
	var errs []error
	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		articles, err := src.Fetch(ctx, q)
		if err != nil {
			logger.ErrorWithErr(ctx, "News source failed", err, "source", src.Name(), "ticker", q.Ticker)
			errs = append(errs, err)
			continue
		}
		if len(articles) == 0 {
			logger.Info(ctx, "No articles from source, trying next", "source", src.Name(), "ticker", q.Ticker)
			continue
		}
		if len(articles) > q.Limit {
			articles = articles[:q.Limit]
		}
		logger.Info(ctx, "News fetched", "source", src.Name(), "ticker", q.Ticker, "articles", len(articles))
		return articles, nil
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ErrNoArticles
}
