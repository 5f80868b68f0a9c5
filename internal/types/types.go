package types

import "time"

type Candle struct {
	Ts    int64   `json:"ts"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
	Vol   float64 `json:"vol"`
}

// Closes extracts closing prices in series order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// MacdCross is the tag describing where the MACD line sits relative to its signal line.
type MacdCross string

const (
	MacdBullishCrossover MacdCross = "Bullish Crossover"
	MacdBearishCrossover MacdCross = "Bearish Crossover"
	MacdBullish          MacdCross = "Bullish (MACD > Signal)"
	MacdBearish          MacdCross = "Bearish (MACD < Signal)"
	MacdNeutral          MacdCross = "Neutral (On Signal Line)"
	MacdInsufficientData MacdCross = "N/A (Insufficient data or values)"
)

// IndicatorSet is the technical snapshot for one ticker. A non-empty Error
// marks the whole set as failed; the numeric fields are then ignored.
type IndicatorSet struct {
	SMA50           *float64  `json:"sma_50"`
	SMA200          *float64  `json:"sma_200"`
	RSI14           *float64  `json:"rsi_14"`
	MACDLine        *float64  `json:"macd_line"`
	MACDSignal      *float64  `json:"macd_signal"`
	MACDHistogram   *float64  `json:"macd_histogram"`
	MACDSignalCross MacdCross `json:"macd_signal_cross,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// IndicatorError builds a set that only carries an error marker.
func IndicatorError(msg string) *IndicatorSet {
	return &IndicatorSet{Error: msg}
}

// Float returns a pointer to v, for building optional indicator values.
func Float(v float64) *float64 {
	return &v
}

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentError    Sentiment = "Error"
)

// NewsArticle is a raw article as returned by a news source.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}

// Snippet is the best short body text available for relevance scoring.
func (a NewsArticle) Snippet() string {
	switch {
	case a.Description != "":
		return a.Description
	case a.Content != "":
		return a.Content
	default:
		return a.Title
	}
}

// NewsQuery describes what a news source should search for.
type NewsQuery struct {
	Ticker      string
	CompanyName string
	Limit       int
}

type RelevanceResult struct {
	Score         int    `json:"relevance_score"`
	Justification string `json:"relevance_justification"`
}

type SentimentResult struct {
	Sentiment     Sentiment `json:"sentiment"`
	Justification string    `json:"justification"`
}

// NewsItem is an article that passed the relevance filter and carries a sentiment label.
type NewsItem struct {
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	URL                    string    `json:"url"`
	PublishedAt            time.Time `json:"publishedAt"`
	Source                 string    `json:"source"`
	RelevanceScore         int       `json:"relevance_score"`
	RelevanceJustification string    `json:"relevance_justification"`
	Sentiment              Sentiment `json:"sentiment"`
	Justification          string    `json:"justification"`
}

type StockInfo struct {
	Symbol              string   `json:"symbol"`
	LongName            string   `json:"longName,omitempty"`
	Sector              string   `json:"sector,omitempty"`
	Industry            string   `json:"industry,omitempty"`
	Country             string   `json:"country,omitempty"`
	Website             string   `json:"website,omitempty"`
	MarketCap           *float64 `json:"marketCap"`
	TrailingPE          *float64 `json:"trailingPE"`
	ForwardPE           *float64 `json:"forwardPE"`
	DividendYield       *float64 `json:"dividendYield"`
	FiftyTwoWeekHigh    *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow     *float64 `json:"fiftyTwoWeekLow"`
	RegularMarketPrice  *float64 `json:"regularMarketPrice"`
	RegularMarketVolume *float64 `json:"regularMarketVolume"`
	ShortSummary        string   `json:"shortSummary"`
}

const summaryLimit = 500

// Summarize trims a long business description the way stock info exposes it.
func Summarize(description string) string {
	if description == "" {
		return "N/A"
	}
	r := []rune(description)
	if len(r) > summaryLimit {
		r = r[:summaryLimit]
	}
	return string(r) + "..."
}

type Outlook string

const (
	OutlookStronglyPositive Outlook = "Strongly Positive Outlook"
	OutlookPositive         Outlook = "Positive Outlook"
	OutlookNeutral          Outlook = "Neutral Outlook"
	OutlookNegative         Outlook = "Negative Outlook"
	OutlookStronglyNegative Outlook = "Strongly Negative Outlook"
	OutlookIndeterminate    Outlook = "Indeterminate"
)

type Confidence string

const (
	ConfidenceVeryLow Confidence = "Very Low"
	ConfidenceLow     Confidence = "Low"
	ConfidenceMedium  Confidence = "Medium"
	ConfidenceHigh    Confidence = "High"
)

// Breakdown exposes the numbers behind an assessment.
type Breakdown struct {
	FinalScore       float64 `json:"final_score"`
	TechnicalScore   float64 `json:"technical_score"`
	NewsScore        float64 `json:"news_score"`
	TechnicalSignals int     `json:"technical_signals"`
	NewsItems        int     `json:"news_items"`
}

type AssessmentResult struct {
	Outlook    Outlook    `json:"outlook"`
	Confidence Confidence `json:"confidence"`
	Drivers    []string   `json:"drivers"`
	Breakdown  Breakdown  `json:"breakdown"`
}

// AnalysisResponse is the full payload returned for one ticker.
type AnalysisResponse struct {
	StockInfo                 *StockInfo    `json:"stock_info"`
	TechnicalIndicators       *IndicatorSet `json:"technical_indicators"`
	NewsWithSentiment         []NewsItem    `json:"news_with_sentiment"`
	OverallAssessment         Outlook       `json:"overall_assessment"`
	AssessmentConfidence      Confidence    `json:"assessment_confidence"`
	AssessmentDrivers         []string      `json:"assessment_drivers"`
	AssessmentBreakdown       Breakdown     `json:"assessment_breakdown"`
	RawNewsFetchedCount       int           `json:"raw_news_fetched_count"`
	RelevantNewsAnalyzedCount int           `json:"relevant_news_analyzed_count"`
	ErrorMessage              string        `json:"error_message,omitempty"`
}
