package polygon

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/types"
)

func TestToCandle(t *testing.T) {
	ts := time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC)
	c := toCandle(models.Agg{Open: 1, High: 3, Low: 0.5, Close: 2, Volume: 1000, Timestamp: models.Millis(ts)})
	assert.Equal(t, types.Candle{Ts: ts.Unix(), Open: 1, High: 3, Low: 0.5, Close: 2, Vol: 1000}, c)
}

func TestToStockInfo(t *testing.T) {
	info := toStockInfo("aapl", models.Ticker{
		Ticker:         "AAPL",
		Name:           "Apple Inc.",
		Description:    "Apple designs phones.",
		HomepageURL:    "https://www.apple.com",
		SICDescription: "ELECTRONIC COMPUTERS",
		Locale:         "us",
		MarketCap:      2.9e12,
	})

	assert.Equal(t, "AAPL", info.Symbol)
	assert.Equal(t, "Apple Inc.", info.LongName)
	assert.Equal(t, "ELECTRONIC COMPUTERS", info.Industry)
	assert.Equal(t, "United States", info.Country)
	assert.Equal(t, "Apple designs phones....", info.ShortSummary)
	require.NotNil(t, info.MarketCap)
	assert.Equal(t, 2.9e12, *info.MarketCap)
	assert.Nil(t, info.TrailingPE)
}

func TestApplyBars(t *testing.T) {
	info := &types.StockInfo{}
	applyBars(info, []types.Candle{
		{Ts: 1700000000, High: 12, Low: 8, Close: 10, Vol: 5},
		{Ts: 1700086400, High: 15, Low: 9, Close: 14, Vol: 7},
	})
	require.NotNil(t, info.FiftyTwoWeekHigh)
	assert.Equal(t, 15.0, *info.FiftyTwoWeekHigh)
	assert.Equal(t, 8.0, *info.FiftyTwoWeekLow)
	assert.Equal(t, 14.0, *info.RegularMarketPrice)
	assert.Equal(t, 7.0, *info.RegularMarketVolume)
}
