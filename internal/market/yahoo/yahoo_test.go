package yahoo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/api"
	"stock-analysis-agent/internal/market"
)

const chartBody = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","longName":"Apple Inc.","regularMarketPrice":190.5,"regularMarketVolume":5000000,"fiftyTwoWeekHigh":199.6,"fiftyTwoWeekLow":164.1},
  "timestamp":[1700172800,1700000000,1700086400],
  "indicators":{"quote":[{
    "open":[12,10,null],
    "high":[13,11,null],
    "low":[11,9,null],
    "close":[12.5,10.5,null],
    "volume":[300,100,null]
  }]}
}],"error":null}}`

const summaryBody = `{"quoteSummary":{"result":[{
  "assetProfile":{"sector":"Technology","industry":"Consumer Electronics","country":"United States","website":"https://www.apple.com","longBusinessSummary":"Apple designs phones."},
  "summaryDetail":{"marketCap":{"raw":2.9e12},"trailingPE":{"raw":31.2},"forwardPE":{"raw":28.4},"dividendYield":{"raw":0.005}},
  "price":{"longName":"Apple Inc."}
}],"error":null}}`

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithRetry(&api.RetryConfig{MaxAttempts: 1}))
}

func TestHistory(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = io.WriteString(w, chartBody)
	})

	candles, err := p.History(context.Background(), "AAPL", 365)
	require.NoError(t, err)
	require.Len(t, candles, 2, "null bars are skipped")
	assert.Equal(t, int64(1700000000), candles[0].Ts)
	assert.Equal(t, 10.5, candles[0].Close)
	assert.Equal(t, 12.5, candles[1].Close)
	assert.Equal(t, 300.0, candles[1].Vol)
}

func TestHistoryUnknownTicker(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})

	_, err := p.History(context.Background(), "ZZZZ", 365)
	assert.ErrorIs(t, err, market.ErrUnknownTicker)
}

func TestHistoryChartError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"chart":{"result":[],"error":{"code":"Bad","description":"Invalid range"}}}`)
	})

	_, err := p.History(context.Background(), "AAPL", 365)
	assert.ErrorIs(t, err, market.ErrNoData)
	assert.Contains(t, err.Error(), "Invalid range")
}

func TestStockInfoWithProfile(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/AAPL":
			_, _ = io.WriteString(w, chartBody)
		case "/v10/finance/quoteSummary/AAPL":
			_, _ = io.WriteString(w, summaryBody)
		default:
			http.NotFound(w, r)
		}
	})

	info, err := p.StockInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", info.Symbol)
	assert.Equal(t, "Apple Inc.", info.LongName)
	assert.Equal(t, "Technology", info.Sector)
	assert.Equal(t, "Apple designs phones....", info.ShortSummary)
	require.NotNil(t, info.TrailingPE)
	assert.Equal(t, 31.2, *info.TrailingPE)
	require.NotNil(t, info.RegularMarketPrice)
	assert.Equal(t, 190.5, *info.RegularMarketPrice)
}

func TestStockInfoWithoutProfile(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v10/finance/quoteSummary/AAPL" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, chartBody)
	})

	info, err := p.StockInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", info.LongName)
	assert.Empty(t, info.Sector)
	assert.Equal(t, "N/A", info.ShortSummary)
	assert.Nil(t, info.MarketCap)
}

func TestRangeFor(t *testing.T) {
	assert.Equal(t, "1mo", rangeFor(20))
	assert.Equal(t, "1y", rangeFor(365))
	assert.Equal(t, "2y", rangeFor(500))
	assert.Equal(t, "max", rangeFor(5000))
}
