// Package market holds what the price-data providers share: sentinel errors,
// the caching decorator and small helpers over candle series.
package market

import (
	"errors"
	"sort"
	"strings"
	"time"

	"stock-analysis-agent/internal/types"
)

var (
	// ErrNoData means the provider answered but had nothing for the ticker.
	ErrNoData = errors.New("market: no data for ticker")
	// ErrUnknownTicker means the provider does not list the ticker at all.
	ErrUnknownTicker = errors.New("market: unknown ticker")
)

// NormalizeTicker trims and upper-cases a user supplied symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Since returns the first instant a history request for days should cover.
func Since(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// YearRange returns the high and low of the candles that fall within a year of
// the newest one. Both are nil when candles is empty.
func YearRange(candles []types.Candle) (high, low *float64) {
	if len(candles) == 0 {
		return nil, nil
	}
	cutoff := time.Unix(candles[len(candles)-1].Ts, 0).AddDate(-1, 0, 0).Unix()
	hi, lo := candles[len(candles)-1].High, candles[len(candles)-1].Low
	for _, c := range candles {
		if c.Ts < cutoff {
			continue
		}
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	return &hi, &lo
}

// SortCandles orders candles oldest first and drops duplicate timestamps.
func SortCandles(candles []types.Candle) []types.Candle {
	if len(candles) < 2 {
		return candles
	}
	out := make([]types.Candle, len(candles))
	copy(out, candles)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ts < out[j].Ts })
	dedup := out[:1]
	for _, c := range out[1:] {
		if c.Ts != dedup[len(dedup)-1].Ts {
			dedup = append(dedup, c)
		}
	}
	return dedup
}
