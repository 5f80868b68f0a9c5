package assessment

import (
	"fmt"
	"math"

	"stock-analysis-agent/internal/types"
)

// signal is the verdict of one technical evaluator.
type signal struct {
	score  float64
	driver string
}

// evaluator inspects an indicator set and reports whether its signal is available.
type evaluator func(ind *types.IndicatorSet) (signal, bool)

// technicalEvaluators run in this order; driver order follows it.
var technicalEvaluators = []evaluator{
	smaTrend,
	rsiZone,
	macdCross,
}

const (
	smaWeight          = 0.75
	rsiWeight          = 0.5
	macdCrossWeight    = 1.0
	macdTrendWeight    = 0.5
	rsiOversold        = 30.0
	rsiOverbought      = 70.0
	rsiBearishZoneHigh = 45.0
	rsiBullishZoneLow  = 55.0
)

func present(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}

func smaTrend(ind *types.IndicatorSet) (signal, bool) {
	if !present(ind.SMA50) || !present(ind.SMA200) {
		return signal{}, false
	}
	fast, slow := *ind.SMA50, *ind.SMA200
	switch {
	case fast > slow:
		return signal{smaWeight, fmt.Sprintf("Positive SMA Trend (50-day: %.2f > 200-day: %.2f)", fast, slow)}, true
	case fast < slow:
		return signal{-smaWeight, fmt.Sprintf("Negative SMA Trend (50-day: %.2f < 200-day: %.2f)", fast, slow)}, true
	default:
		return signal{0, fmt.Sprintf("Neutral SMA Trend (50-day: %.2f = 200-day: %.2f)", fast, slow)}, true
	}
}

// rsiZone scores only the extremes; the inner zones add narrative.
func rsiZone(ind *types.IndicatorSet) (signal, bool) {
	if !present(ind.RSI14) {
		return signal{}, false
	}
	rsi := *ind.RSI14
	switch {
	case rsi < rsiOversold:
		return signal{rsiWeight, fmt.Sprintf("RSI Oversold (%.2f) - Potential Rebound", rsi)}, true
	case rsi > rsiOverbought:
		return signal{-rsiWeight, fmt.Sprintf("RSI Overbought (%.2f) - Potential Pullback", rsi)}, true
	case rsi < rsiBearishZoneHigh:
		return signal{0, fmt.Sprintf("RSI Bearish Zone (%.2f)", rsi)}, true
	case rsi > rsiBullishZoneLow:
		return signal{0, fmt.Sprintf("RSI Bullish Zone (%.2f)", rsi)}, true
	default:
		return signal{0, fmt.Sprintf("RSI Neutral (%.2f)", rsi)}, true
	}
}

func macdCross(ind *types.IndicatorSet) (signal, bool) {
	cross := ind.MACDSignalCross
	if cross == "" || cross == types.MacdInsufficientData {
		return signal{}, false
	}

	hist := ""
	if present(ind.MACDHistogram) {
		hist = fmt.Sprintf(" (Hist: %.2f)", *ind.MACDHistogram)
	}

	switch cross {
	case types.MacdBullishCrossover:
		return signal{macdCrossWeight, "MACD Bullish Crossover" + hist}, true
	case types.MacdBearishCrossover:
		return signal{-macdCrossWeight, "MACD Bearish Crossover" + hist}, true
	case types.MacdBullish:
		return signal{macdTrendWeight, "MACD Bullish Trend" + hist}, true
	case types.MacdBearish:
		return signal{-macdTrendWeight, "MACD Bearish Trend" + hist}, true
	default:
		return signal{0, "MACD Neutral" + hist}, true
	}
}
