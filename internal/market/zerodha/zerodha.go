// Package zerodha serves NSE/BSE daily history and quotes through Kite Connect.
package zerodha

import (
	"context"
	"fmt"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/market"
	"stock-analysis-agent/internal/types"
)

// kiteAPI is the subset of *kiteconnect.Client the provider calls.
type kiteAPI interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
	GetQuote(instruments ...string) (kiteconnect.Quote, error)
}

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string
}

type Provider struct {
	kc       kiteAPI
	exchange string
	mapper   *instrumentMapper
	loadMu   sync.Mutex
	now      func() time.Time
}

var _ interfaces.MarketData = (*Provider)(nil)

func New(p Params) *Provider {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newProvider(kc, p.Exchange)
}

func newProvider(kc kiteAPI, exchange string) *Provider {
	if exchange == "" {
		exchange = "NSE"
	}
	return &Provider{
		kc:       kc,
		exchange: exchange,
		mapper:   newInstrumentMapper(),
		now:      time.Now,
	}
}

// ensureInstruments downloads the instrument dump once. A failed download is
// retried on the next call.
func (p *Provider) ensureInstruments(ctx context.Context) error {
	if p.mapper.isLoaded() {
		return nil
	}
	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	if p.mapper.isLoaded() {
		return nil
	}

	list, err := p.kc.GetInstrumentsByExchange(p.exchange)
	if err != nil {
		return fmt.Errorf("kite instruments %s: %w", p.exchange, err)
	}
	p.mapper.load(list)
	logger.Info(ctx, "Kite instruments loaded", "exchange", p.exchange, "count", len(list))
	return nil
}

func (p *Provider) token(ctx context.Context, ticker string) (int, error) {
	if err := p.ensureInstruments(ctx); err != nil {
		return 0, err
	}
	token, ok := p.mapper.getToken(ticker)
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s", market.ErrUnknownTicker, ticker, p.exchange)
	}
	return token, nil
}

func (p *Provider) History(ctx context.Context, ticker string, days int) ([]types.Candle, error) {
	token, err := p.token(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	to := p.now()
	rows, err := p.kc.GetHistoricalData(token, "day", market.Since(to, days), to, false, false)
	if err != nil {
		return nil, fmt.Errorf("kite history %s: %w", ticker, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrNoData, ticker)
	}

	candles := make([]types.Candle, 0, len(rows))
	for _, r := range rows {
		candles = append(candles, types.Candle{
			Ts:    r.Date.Unix(),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
			Vol:   float64(r.Volume),
		})
	}
	return market.SortCandles(candles), nil
}

// StockInfo uses the instrument name, a live quote and a year of bars for the
// 52 week range. Kite has no fundamentals, so those fields stay nil.
func (p *Provider) StockInfo(ctx context.Context, ticker string) (*types.StockInfo, error) {
	if _, err := p.token(ctx, ticker); err != nil {
		return nil, err
	}

	info := &types.StockInfo{
		Symbol:       ticker,
		LongName:     p.mapper.getName(ticker),
		Country:      "India",
		ShortSummary: types.Summarize(""),
	}

	key := p.exchange + ":" + ticker
	quotes, err := p.kc.GetQuote(key)
	if err != nil {
		return nil, fmt.Errorf("kite quote %s: %w", key, err)
	}
	if q, ok := quotes[key]; ok {
		info.RegularMarketPrice = types.Float(q.LastPrice)
		info.RegularMarketVolume = types.Float(float64(q.Volume))
	}

	if candles, err := p.History(ctx, ticker, 365); err == nil {
		info.FiftyTwoWeekHigh, info.FiftyTwoWeekLow = market.YearRange(candles)
	} else {
		logger.Debug(ctx, "Kite 52 week range unavailable", "ticker", ticker, "error", err)
	}
	return info, nil
}
