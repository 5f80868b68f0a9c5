// Package yahoo reads daily bars and company metadata from the public Yahoo
// Finance chart and quoteSummary endpoints.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stock-analysis-agent/internal/api"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/market"
	"stock-analysis-agent/internal/types"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

type Provider struct {
	client *api.Client
	retry  *api.RetryConfig
}

var _ interfaces.MarketData = (*Provider)(nil)

type options struct {
	baseURL string
	timeout time.Duration
	retry   *api.RetryConfig
}

type Option func(*options)

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithRetry(cfg *api.RetryConfig) Option {
	return func(o *options) { o.retry = cfg }
}

func New(opts ...Option) *Provider {
	o := options{
		baseURL: defaultBaseURL,
		timeout: 20 * time.Second,
		retry: &api.RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Retryable:   api.IsTransient,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Provider{
		client: api.NewClient(
			api.WithBaseURL(o.baseURL),
			api.WithTimeout(o.timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
		retry: o.retry,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string   `json:"symbol"`
				LongName            string   `json:"longName"`
				ShortName           string   `json:"shortName"`
				RegularMarketPrice  *float64 `json:"regularMarketPrice"`
				RegularMarketVolume *float64 `json:"regularMarketVolume"`
				FiftyTwoWeekHigh    *float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow     *float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (p *Provider) chart(ctx context.Context, ticker, rng string) (*chartResponse, error) {
	req := api.NewRequest(http.MethodGet, "/v8/finance/chart/"+url.PathEscape(ticker)).
		WithContext(ctx).
		WithQuery(url.Values{
			"interval":       {"1d"},
			"range":          {rng},
			"includePrePost": {"false"},
		})

	resp, err := p.client.DoWithRetry(req, p.retry)
	if err != nil {
		if api.StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", market.ErrUnknownTicker, ticker)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	var chart chartResponse
	if err := resp.ParseJSON(&chart); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", market.ErrNoData, ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrNoData, ticker)
	}
	return &chart, nil
}

// History returns daily bars covering at least days calendar days, oldest first.
func (p *Provider) History(ctx context.Context, ticker string, days int) ([]types.Candle, error) {
	chart, err := p.chart(ctx, ticker, rangeFor(days))
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrNoData, ticker)
	}
	q := result.Indicators.Quote[0]

	candles := make([]types.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(q.Close, i)
		if c == nil {
			continue // holidays and halted sessions come back as nulls
		}
		candles = append(candles, types.Candle{
			Ts:    ts,
			Open:  value(at(q.Open, i), *c),
			High:  value(at(q.High, i), *c),
			Low:   value(at(q.Low, i), *c),
			Close: *c,
			Vol:   value(at(q.Volume, i), 0),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrNoData, ticker)
	}
	return market.SortCandles(candles), nil
}

// StockInfo combines chart metadata with the quoteSummary profile when Yahoo
// serves it. The profile is optional; without it only price fields are set.
func (p *Provider) StockInfo(ctx context.Context, ticker string) (*types.StockInfo, error) {
	chart, err := p.chart(ctx, ticker, "5d")
	if err != nil {
		return nil, err
	}
	meta := chart.Chart.Result[0].Meta

	info := &types.StockInfo{
		Symbol:              ticker,
		LongName:            firstNonEmpty(meta.LongName, meta.ShortName),
		RegularMarketPrice:  meta.RegularMarketPrice,
		RegularMarketVolume: meta.RegularMarketVolume,
		FiftyTwoWeekHigh:    meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:     meta.FiftyTwoWeekLow,
		ShortSummary:        types.Summarize(""),
	}
	if meta.Symbol != "" {
		info.Symbol = meta.Symbol
	}

	if err := p.enrich(ctx, ticker, info); err != nil {
		logger.Debug(ctx, "Yahoo profile unavailable", "ticker", ticker, "error", err)
	}
	return info, nil
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
				Country             string `json:"country"`
				Website             string `json:"website"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			SummaryDetail struct {
				MarketCap     rawValue `json:"marketCap"`
				TrailingPE    rawValue `json:"trailingPE"`
				ForwardPE     rawValue `json:"forwardPE"`
				DividendYield rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			Price struct {
				LongName string `json:"longName"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func (p *Provider) enrich(ctx context.Context, ticker string, info *types.StockInfo) error {
	resp, err := p.client.GET(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(ticker), url.Values{
		"modules": {"assetProfile,summaryDetail,price"},
	})
	if err != nil {
		return err
	}

	var s summaryResponse
	if err := resp.ParseJSON(&s); err != nil {
		return err
	}
	if s.QuoteSummary.Error != nil {
		return fmt.Errorf("quoteSummary: %s", s.QuoteSummary.Error.Description)
	}
	if len(s.QuoteSummary.Result) == 0 {
		return market.ErrNoData
	}

	r := s.QuoteSummary.Result[0]
	info.LongName = firstNonEmpty(r.Price.LongName, info.LongName)
	info.Sector = r.AssetProfile.Sector
	info.Industry = r.AssetProfile.Industry
	info.Country = r.AssetProfile.Country
	info.Website = r.AssetProfile.Website
	info.ShortSummary = types.Summarize(r.AssetProfile.LongBusinessSummary)
	info.MarketCap = r.SummaryDetail.MarketCap.Raw
	info.TrailingPE = r.SummaryDetail.TrailingPE.Raw
	info.ForwardPE = r.SummaryDetail.ForwardPE.Raw
	info.DividendYield = r.SummaryDetail.DividendYield.Raw
	return nil
}

// rangeFor picks the smallest chart range that covers days.
func rangeFor(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 366:
		return "1y"
	case days <= 731:
		return "2y"
	case days <= 1827:
		return "5y"
	default:
		return "max"
	}
}

func at(vs []*float64, i int) *float64 {
	if i < len(vs) {
		return vs[i]
	}
	return nil
}

func value(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
