package interfaces

import (
	"context"

	"stock-analysis-agent/internal/types"
)

// MarketData supplies company metadata and daily price history.
type MarketData interface {
	StockInfo(ctx context.Context, ticker string) (*types.StockInfo, error)
	History(ctx context.Context, ticker string, days int) ([]types.Candle, error)
}
