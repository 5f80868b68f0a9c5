package marketobs

import (
	"context"
	"time"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/metrics"
	"stock-analysis-agent/internal/trace"
	"stock-analysis-agent/internal/types"
)

// observableMarket wraps a MarketData provider with logging, tracing and metrics
type observableMarket struct {
	market   interfaces.MarketData
	provider string
	metrics  *metrics.Recorder
}

var _ interfaces.MarketData = (*observableMarket)(nil)

func Wrap(market interfaces.MarketData, provider string, rec *metrics.Recorder) interfaces.MarketData {
	return &observableMarket{
		market:   market,
		provider: provider,
		metrics:  rec,
	}
}

func (om *observableMarket) StockInfo(ctx context.Context, ticker string) (*types.StockInfo, error) {
	ctx, span := trace.StartSpan(ctx, "market.StockInfo")
	defer span.End()
	span.SetAttributes(trace.Attributes("ticker", ticker, "provider", om.provider)...)

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Fetching stock info", "ticker", ticker, "provider", om.provider)

	info, err := om.market.StockInfo(ctx, ticker)
	om.record("StockInfo", start, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch stock info", err,
			"ticker", ticker,
			"provider", om.provider,
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Stock info fetched",
		"ticker", ticker,
		"name", info.LongName,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return info, nil
}

func (om *observableMarket) History(ctx context.Context, ticker string, days int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "market.History")
	defer span.End()
	span.SetAttributes(trace.Attributes("ticker", ticker, "provider", om.provider, "days", days)...)

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Fetching price history", "ticker", ticker, "days", days)

	candles, err := om.market.History(ctx, ticker, days)
	om.record("History", start, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price history", err,
			"ticker", ticker,
			"provider", om.provider,
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Price history fetched",
		"ticker", ticker,
		"bars", len(candles),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return candles, nil
}

func (om *observableMarket) record(op string, start time.Time, err error) {
	if om.metrics != nil {
		om.metrics.RecordUpstream("market", om.provider, op, time.Since(start), err)
	}
}
