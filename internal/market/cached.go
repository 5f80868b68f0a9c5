package market

import (
	"context"
	"strconv"
	"time"

	"stock-analysis-agent/internal/cache"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/types"
)

// Cached serves repeated lookups for the same ticker from c.
type Cached struct {
	next     interfaces.MarketData
	cache    cache.Cache
	provider string
	ttl      time.Duration
}

var _ interfaces.MarketData = (*Cached)(nil)

func NewCached(next interfaces.MarketData, c cache.Cache, provider string, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: c, provider: provider, ttl: ttl}
}

func (m *Cached) StockInfo(ctx context.Context, ticker string) (*types.StockInfo, error) {
	key := cache.Key("market", m.provider, "info", ticker)
	return cache.GetOrLoad(ctx, m.cache, key, m.ttl, func(ctx context.Context) (*types.StockInfo, error) {
		return m.next.StockInfo(ctx, ticker)
	})
}

func (m *Cached) History(ctx context.Context, ticker string, days int) ([]types.Candle, error) {
	key := cache.Key("market", m.provider, "history", ticker, strconv.Itoa(days))
	return cache.GetOrLoad(ctx, m.cache, key, m.ttl, func(ctx context.Context) ([]types.Candle, error) {
		return m.next.History(ctx, ticker, days)
	})
}
