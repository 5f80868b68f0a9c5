// Package assessment turns technical indicators and scored news into a
// single outlook, a confidence label and the drivers behind them.
//
// Everything here is pure: no I/O, no shared state. Missing or broken
// inputs lower confidence instead of failing.
package assessment

import (
	"fmt"
	"math"

	"stock-analysis-agent/internal/types"
)

const (
	DriverInsufficientData      = "Insufficient data for assessment."
	DriverNoSpecific            = "No specific drivers identified."
	DriverNoRelevantNews        = "No relevant news with sentiment to score."
	DriverIndicatorsUnavailable = "Technical indicators unavailable."
	DriverTechnicalOnly         = "Assessment based solely on technical indicators."
	DriverNewsOnly              = "Assessment based solely on news sentiment."
)

const (
	// maxTechnicalMagnitude is the largest unsigned sum the evaluators can produce.
	maxTechnicalMagnitude = smaWeight + rsiWeight + macdCrossWeight

	technicalWeight = 0.6
	newsWeight      = 0.4

	// newsDriverThreshold is compared strictly: one net article out of three is mixed.
	newsDriverThreshold = 1.0 / 3.0
	neutralBand         = 0.05
)

type technicalSummary struct {
	score   float64
	signals int
	drivers []string
}

type newsSummary struct {
	score  float64
	items  int
	driver string
}

// Assess derives the overall outlook for one ticker. ind may be nil when no
// indicators could be produced; news holds only relevance-filtered items.
func Assess(ind *types.IndicatorSet, news []types.NewsItem) types.AssessmentResult {
	tech := evaluateTechnicals(ind)
	nws := evaluateNews(news)

	breakdown := types.Breakdown{
		TechnicalScore:   tech.score,
		NewsScore:        nws.score,
		TechnicalSignals: tech.signals,
		NewsItems:        nws.items,
	}

	hasTech, hasNews := tech.signals > 0, nws.items > 0
	if !hasTech && !hasNews {
		return types.AssessmentResult{
			Outlook:    types.OutlookIndeterminate,
			Confidence: types.ConfidenceVeryLow,
			Drivers:    []string{DriverInsufficientData},
			Breakdown:  breakdown,
		}
	}

	drivers := make([]string, 0, len(tech.drivers)+2)
	drivers = append(drivers, tech.drivers...)
	drivers = append(drivers, nws.driver)

	var final float64
	switch {
	case hasTech && hasNews:
		final = technicalWeight*tech.score + newsWeight*nws.score
	case hasTech:
		final = tech.score
		drivers = append(drivers, DriverTechnicalOnly)
	default:
		final = nws.score
		drivers = append(drivers, DriverNewsOnly)
	}
	final = clamp(final)
	breakdown.FinalScore = final

	outlook, confidence := classify(final, hasTech && hasNews)
	if thinData(tech.signals, nws.items) {
		confidence = downgrade(confidence)
	}

	return types.AssessmentResult{
		Outlook:    outlook,
		Confidence: confidence,
		Drivers:    finalizeDrivers(outlook, drivers),
		Breakdown:  breakdown,
	}
}

func evaluateTechnicals(ind *types.IndicatorSet) technicalSummary {
	var sum technicalSummary
	switch {
	case ind == nil:
		sum.drivers = []string{DriverIndicatorsUnavailable}
		return sum
	case ind.Error != "":
		sum.drivers = []string{fmt.Sprintf("Technical indicators error: %s", ind.Error)}
		return sum
	}

	raw := 0.0
	for _, eval := range technicalEvaluators {
		s, ok := eval(ind)
		if !ok {
			continue
		}
		raw += s.score
		sum.signals++
		sum.drivers = append(sum.drivers, s.driver)
	}
	if sum.signals > 0 {
		sum.score = clamp(raw / maxTechnicalMagnitude)
	}
	return sum
}

func evaluateNews(items []types.NewsItem) newsSummary {
	if len(items) == 0 {
		return newsSummary{driver: DriverNoRelevantNews}
	}

	positive, negative := 0, 0
	for _, it := range items {
		switch it.Sentiment {
		case types.SentimentPositive:
			positive++
		case types.SentimentNegative:
			negative++
		}
	}
	total := len(items)
	score := float64(positive-negative) / float64(total)

	prefix := "Overall Neutral/Mixed "
	switch {
	case score > newsDriverThreshold:
		prefix = "Overall Positive "
	case score < -newsDriverThreshold:
		prefix = "Overall Negative "
	}

	return newsSummary{
		score:  score,
		items:  total,
		driver: fmt.Sprintf("%sRelevant News Sentiment (%d Pos, %d Neg of %d analyzed)", prefix, positive, negative, total),
	}
}

// classify maps a clamped score to its outlook and base confidence.
func classify(score float64, bothFamilies bool) (types.Outlook, types.Confidence) {
	switch {
	case score > 0.6:
		return types.OutlookStronglyPositive, types.ConfidenceHigh
	case score > 0.2:
		return types.OutlookPositive, types.ConfidenceMedium
	case score >= -0.2:
		if math.Abs(score) < neutralBand {
			if bothFamilies {
				return types.OutlookNeutral, types.ConfidenceHigh
			}
			return types.OutlookNeutral, types.ConfidenceLow
		}
		return types.OutlookNeutral, types.ConfidenceMedium
	case score >= -0.6:
		return types.OutlookNegative, types.ConfidenceMedium
	default:
		return types.OutlookStronglyNegative, types.ConfidenceHigh
	}
}

// thinData reports whether too few signals back the score. The all-zero
// case never reaches here.
func thinData(techSignals, newsItems int) bool {
	switch {
	case techSignals < 2 && newsItems == 0:
		return true
	case techSignals == 0 && newsItems < 2:
		return true
	case techSignals <= 1 && newsItems <= 1 && !(techSignals == 0 && newsItems == 0):
		return true
	default:
		return false
	}
}

func downgrade(c types.Confidence) types.Confidence {
	switch c {
	case types.ConfidenceHigh:
		return types.ConfidenceMedium
	case types.ConfidenceMedium:
		return types.ConfidenceLow
	default:
		return c
	}
}

// finalizeDrivers guarantees a non-empty list and keeps an indeterminate
// outcome from carrying partial signal text.
func finalizeDrivers(outlook types.Outlook, drivers []string) []string {
	if len(drivers) == 0 {
		return []string{DriverNoSpecific}
	}
	if outlook == types.OutlookIndeterminate && len(drivers) > 1 && drivers[0] != DriverInsufficientData {
		return []string{DriverInsufficientData}
	}
	return drivers
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
