// Package indicators computes the technical snapshot fed to the assessment.
package indicators

import (
	"fmt"
	"math"

	"stock-analysis-agent/internal/ta"
	"stock-analysis-agent/internal/types"
)

// Config selects indicator windows.
type Config struct {
	SMAFast    int `yaml:"sma_fast" default:"50" validate:"gt=0"`
	SMASlow    int `yaml:"sma_slow" default:"200" validate:"gtfield=SMAFast"`
	RSIPeriod  int `yaml:"rsi_period" default:"14" validate:"gt=0"`
	MACDFast   int `yaml:"macd_fast" default:"12" validate:"gt=0"`
	MACDSlow   int `yaml:"macd_slow" default:"26" validate:"gtfield=MACDFast"`
	MACDSignal int `yaml:"macd_signal" default:"9" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{SMAFast: 50, SMASlow: 200, RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9}
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate never fails: windows that cannot be filled are left nil and a
// missing series becomes an error marker.
func (c *Calculator) Calculate(ticker string, candles []types.Candle) *types.IndicatorSet {
	if len(candles) == 0 {
		return types.IndicatorError(fmt.Sprintf("Could not fetch historical data for %s.", ticker))
	}
	closes := types.Closes(candles)
	set := &types.IndicatorSet{MACDSignalCross: types.MacdInsufficientData}

	if v, err := ta.SMA(closes, c.cfg.SMAFast); err == nil {
		set.SMA50 = rounded(v)
	}
	if v, err := ta.SMA(closes, c.cfg.SMASlow); err == nil {
		set.SMA200 = rounded(v)
	}
	if v, err := ta.RSI(closes, c.cfg.RSIPeriod); err == nil {
		set.RSI14 = rounded(v)
	}

	macd, err := ta.MACD(closes, c.cfg.MACDFast, c.cfg.MACDSlow, c.cfg.MACDSignal)
	if err != nil {
		return set
	}
	last := len(closes) - 1
	set.MACDLine = rounded(macd.Line[last])
	set.MACDSignal = rounded(macd.Signal[last])
	set.MACDHistogram = rounded(macd.Histogram[last])
	set.MACDSignalCross = Cross(macd.Histogram[last-1], macd.Histogram[last])
	return set
}

// Cross labels the latest histogram move given the previous and latest values.
func Cross(prev, latest float64) types.MacdCross {
	switch {
	case math.IsNaN(prev) || math.IsNaN(latest):
		return types.MacdInsufficientData
	case latest > 0 && prev <= 0:
		return types.MacdBullishCrossover
	case latest < 0 && prev >= 0:
		return types.MacdBearishCrossover
	case latest > 0:
		return types.MacdBullish
	case latest < 0:
		return types.MacdBearish
	default:
		return types.MacdNeutral
	}
}

func rounded(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return types.Float(math.Round(v*100) / 100)
}
