package marketobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/metrics"
	"stock-analysis-agent/internal/types"
)

type stubMarket struct {
	err error
}

func (s stubMarket) StockInfo(_ context.Context, ticker string) (*types.StockInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.StockInfo{Symbol: ticker}, nil
}

func (s stubMarket) History(context.Context, string, int) ([]types.Candle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []types.Candle{{Ts: 1, Close: 1}}, nil
}

func TestWrapPassesThrough(t *testing.T) {
	m := Wrap(stubMarket{}, "YAHOO", metrics.New(prometheus.NewRegistry()))

	info, err := m.StockInfo(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "ACME", info.Symbol)

	candles, err := m.History(context.Background(), "ACME", 30)
	require.NoError(t, err)
	assert.Len(t, candles, 1)
}

func TestWrapReturnsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := Wrap(stubMarket{err: boom}, "YAHOO", nil)

	_, err := m.StockInfo(context.Background(), "ACME")
	assert.ErrorIs(t, err, boom)
	_, err = m.History(context.Background(), "ACME", 30)
	assert.ErrorIs(t, err, boom)
}
