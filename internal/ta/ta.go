package ta

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
)

var ErrInsufficientData = errors.New("insufficient data")

// SMA is the mean of the last n closes.
func SMA(closes []float64, n int) (float64, error) {
	if n <= 0 || len(closes) < n {
		return 0, fmt.Errorf("sma(%d) over %d points: %w", n, len(closes), ErrInsufficientData)
	}
	return stats.Mean(closes[len(closes)-n:])
}

// EMA returns the exponential moving average series for a span, seeded with
// the first value (no bias adjustment).
func EMA(values []float64, span int) []float64 {
	if span <= 0 || len(values) == 0 {
		return nil
	}
	return smooth(values, 2.0/float64(span+1))
}

func smooth(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI uses Wilder smoothing (alpha = 1/period) over gains and losses.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 || len(closes) < period+1 {
		return 0, fmt.Errorf("rsi(%d) over %d points: %w", period, len(closes), ErrInsufficientData)
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	alpha := 1.0 / float64(period)
	avgGain := smooth(gains, alpha)[len(gains)-1]
	avgLoss := smooth(losses, alpha)[len(losses)-1]

	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50, nil
	case avgLoss == 0:
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs)), nil
}

// MACDSeries holds aligned MACD, signal and histogram series.
type MACDSeries struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD needs at least slow+signal points so the signal line has settled.
func MACD(closes []float64, fast, slow, signal int) (MACDSeries, error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return MACDSeries{}, fmt.Errorf("macd(%d,%d,%d): invalid windows", fast, slow, signal)
	}
	if len(closes) < slow+signal {
		return MACDSeries{}, fmt.Errorf("macd(%d,%d,%d) over %d points: %w", fast, slow, signal, len(closes), ErrInsufficientData)
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := EMA(line, signal)
	hist := make([]float64, len(closes))
	for i := range line {
		hist[i] = line[i] - sig[i]
	}
	return MACDSeries{Line: line, Signal: sig, Histogram: hist}, nil
}
