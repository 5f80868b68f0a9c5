package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/types"
)

func candles(closes ...float64) []types.Candle {
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		out[i] = types.Candle{Ts: int64(i), Close: c}
	}
	return out
}

func series(n int, f func(i int) float64) []types.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = f(i)
	}
	return candles(closes...)
}

func TestCalculateNoHistory(t *testing.T) {
	got := NewCalculator(DefaultConfig()).Calculate("ACME", nil)

	assert.Equal(t, "Could not fetch historical data for ACME.", got.Error)
	assert.Nil(t, got.SMA50)
}

func TestCalculateShortHistory(t *testing.T) {
	got := NewCalculator(DefaultConfig()).Calculate("ACME", series(20, func(i int) float64 { return 100 + float64(i) }))

	assert.Empty(t, got.Error)
	assert.Nil(t, got.SMA50)
	assert.Nil(t, got.SMA200)
	require.NotNil(t, got.RSI14)
	assert.Equal(t, 100.0, *got.RSI14)
	assert.Equal(t, types.MacdInsufficientData, got.MACDSignalCross)
	assert.Nil(t, got.MACDHistogram)
}

func TestCalculateFullYear(t *testing.T) {
	got := NewCalculator(DefaultConfig()).Calculate("ACME", series(252, func(i int) float64 {
		return 100 + float64(i)*0.5 + 3*math.Sin(float64(i)/5)
	}))

	require.NotNil(t, got.SMA50)
	require.NotNil(t, got.SMA200)
	require.NotNil(t, got.RSI14)
	require.NotNil(t, got.MACDLine)
	require.NotNil(t, got.MACDSignal)
	require.NotNil(t, got.MACDHistogram)

	assert.Greater(t, *got.SMA50, *got.SMA200)
	assert.GreaterOrEqual(t, *got.RSI14, 0.0)
	assert.LessOrEqual(t, *got.RSI14, 100.0)
	assert.NotEqual(t, types.MacdInsufficientData, got.MACDSignalCross)
	assert.Equal(t, math.Round(*got.SMA50*100)/100, *got.SMA50)
}

func TestCalculateSMAValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SMAFast, cfg.SMASlow = 2, 4
	got := NewCalculator(cfg).Calculate("ACME", candles(1, 2, 3, 4))

	require.NotNil(t, got.SMA50)
	require.NotNil(t, got.SMA200)
	assert.Equal(t, 3.5, *got.SMA50)
	assert.Equal(t, 2.5, *got.SMA200)
}

func TestCross(t *testing.T) {
	tests := []struct {
		prev, latest float64
		want         types.MacdCross
	}{
		{-0.1, 0.2, types.MacdBullishCrossover},
		{0, 0.2, types.MacdBullishCrossover},
		{0.1, -0.2, types.MacdBearishCrossover},
		{0, -0.2, types.MacdBearishCrossover},
		{0.1, 0.2, types.MacdBullish},
		{-0.1, -0.2, types.MacdBearish},
		{0.3, 0, types.MacdNeutral},
		{math.NaN(), 1, types.MacdInsufficientData},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Cross(tt.prev, tt.latest), "prev=%v latest=%v", tt.prev, tt.latest)
	}
}
