package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/cache"
	"stock-analysis-agent/internal/types"
)

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeTicker("  aapl "))
	assert.Equal(t, "", NormalizeTicker("   "))
}

func TestSortCandles(t *testing.T) {
	got := SortCandles([]types.Candle{{Ts: 3, Close: 3}, {Ts: 1, Close: 1}, {Ts: 3, Close: 30}, {Ts: 2, Close: 2}})
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].Ts, got[1].Ts, got[2].Ts})
	assert.Equal(t, 3.0, got[2].Close, "first of duplicate timestamps wins")
}

func TestYearRange(t *testing.T) {
	hi, lo := YearRange(nil)
	assert.Nil(t, hi)
	assert.Nil(t, lo)

	last := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := []types.Candle{
		{Ts: last.AddDate(-2, 0, 0).Unix(), High: 500, Low: 1},
		{Ts: last.AddDate(0, -6, 0).Unix(), High: 120, Low: 90},
		{Ts: last.Unix(), High: 110, Low: 100},
	}
	hi, lo = YearRange(candles)
	assert.Equal(t, 120.0, *hi)
	assert.Equal(t, 90.0, *lo)
}

type countingMarket struct {
	infoCalls, historyCalls int
}

func (m *countingMarket) StockInfo(_ context.Context, ticker string) (*types.StockInfo, error) {
	m.infoCalls++
	return &types.StockInfo{Symbol: ticker, LongName: "Acme Corp"}, nil
}

func (m *countingMarket) History(_ context.Context, _ string, days int) ([]types.Candle, error) {
	m.historyCalls++
	return []types.Candle{{Ts: int64(days), Close: 1}}, nil
}

func TestCachedServesRepeats(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()

	inner := &countingMarket{}
	m := NewCached(inner, mc, "YAHOO", time.Minute)

	for i := 0; i < 3; i++ {
		info, err := m.StockInfo(ctx, "ACME")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", info.LongName)

		candles, err := m.History(ctx, "ACME", 365)
		require.NoError(t, err)
		assert.Equal(t, int64(365), candles[0].Ts)
	}
	assert.Equal(t, 1, inner.infoCalls)
	assert.Equal(t, 1, inner.historyCalls)

	_, err := m.History(ctx, "ACME", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.historyCalls, "different windows use different keys")
}
