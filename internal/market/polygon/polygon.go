// Package polygon serves price history and company details from Polygon.io.
package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/market"
	"stock-analysis-agent/internal/types"
)

type Provider struct {
	client *polygon.Client
	now    func() time.Time
}

var _ interfaces.MarketData = (*Provider)(nil)

func New(apiKey string) *Provider {
	return &Provider{client: polygon.New(apiKey), now: time.Now}
}

// Client exposes the REST client so the news source can share it.
func (p *Provider) Client() *polygon.Client {
	return p.client
}

// History returns adjusted daily aggregates for the last days calendar days, oldest first.
func (p *Provider) History(ctx context.Context, ticker string, days int) ([]types.Candle, error) {
	to := p.now()
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(market.Since(to, days)),
		To:         models.Millis(to),
	}.WithOrder(models.Asc).WithAdjusted(true)

	iter := p.client.ListAggs(ctx, params)

	var candles []types.Candle
	for iter.Next() {
		candles = append(candles, toCandle(iter.Item()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggs %s: %w", ticker, translate(err))
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrNoData, ticker)
	}
	return market.SortCandles(candles), nil
}

// StockInfo maps ticker reference data and fills the 52 week range and last
// price from a year of daily bars.
func (p *Provider) StockInfo(ctx context.Context, ticker string) (*types.StockInfo, error) {
	res, err := p.client.GetTickerDetails(ctx, &models.GetTickerDetailsParams{Ticker: ticker})
	if err != nil {
		return nil, fmt.Errorf("polygon ticker details %s: %w", ticker, translate(err))
	}
	info := toStockInfo(ticker, res.Results)

	if candles, err := p.History(ctx, ticker, 365); err == nil {
		applyBars(info, candles)
	}
	return info, nil
}

func toCandle(a models.Agg) types.Candle {
	return types.Candle{
		Ts:    time.Time(a.Timestamp).Unix(),
		Open:  a.Open,
		High:  a.High,
		Low:   a.Low,
		Close: a.Close,
		Vol:   a.Volume,
	}
}

func toStockInfo(ticker string, t models.Ticker) *types.StockInfo {
	info := &types.StockInfo{
		Symbol:       ticker,
		LongName:     t.Name,
		Industry:     t.SICDescription,
		Website:      t.HomepageURL,
		ShortSummary: types.Summarize(t.Description),
	}
	if t.Ticker != "" {
		info.Symbol = t.Ticker
	}
	if t.Locale == "us" {
		info.Country = "United States"
	}
	if t.MarketCap > 0 {
		info.MarketCap = types.Float(t.MarketCap)
	}
	return info
}

func applyBars(info *types.StockInfo, candles []types.Candle) {
	if len(candles) == 0 {
		return
	}
	info.FiftyTwoWeekHigh, info.FiftyTwoWeekLow = market.YearRange(candles)
	last := candles[len(candles)-1]
	info.RegularMarketPrice = types.Float(last.Close)
	info.RegularMarketVolume = types.Float(last.Vol)
}

func translate(err error) error {
	var perr *models.ErrorResponse
	if errors.As(err, &perr) && perr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", market.ErrUnknownTicker, err)
	}
	return err
}
