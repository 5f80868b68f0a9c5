package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/types"
)

type fakeMarket struct {
	info       *types.StockInfo
	infoErr    error
	candles    []types.Candle
	historyErr error
}

func (f *fakeMarket) StockInfo(context.Context, string) (*types.StockInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeMarket) History(context.Context, string, int) ([]types.Candle, error) {
	return f.candles, f.historyErr
}

type fakeNews struct {
	articles []types.NewsArticle
	got      types.NewsQuery
}

func (f *fakeNews) Articles(_ context.Context, q types.NewsQuery) []types.NewsArticle {
	f.got = q
	return f.articles
}

// fakeClassifier scores relevance by title and labels sentiment by keyword.
type fakeClassifier struct {
	mu         sync.Mutex
	scores     map[string]int
	sentiments []string
	relCalls   int
}

func (f *fakeClassifier) ClassifyRelevance(_ context.Context, title, _, _, _ string) types.RelevanceResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relCalls++
	return types.RelevanceResult{Score: f.scores[title], Justification: "scored " + title}
}

func (f *fakeClassifier) ClassifySentiment(_ context.Context, text, _ string) types.SentimentResult {
	f.mu.Lock()
	f.sentiments = append(f.sentiments, text)
	f.mu.Unlock()
	if strings.Contains(text, "miss") {
		return types.SentimentResult{Sentiment: types.SentimentNegative, Justification: "miss"}
	}
	return types.SentimentResult{Sentiment: types.SentimentPositive, Justification: "beat"}
}

func trendingCandles(n int) []types.Candle {
	out := make([]types.Candle, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		price := 100 + float64(i)*0.5
		out[i] = types.Candle{Ts: start.AddDate(0, 0, i).Unix(), Open: price, High: price + 1, Low: price - 1, Close: price, Vol: 1000}
	}
	return out
}

func TestAnalyzeRejectsEmptyTicker(t *testing.T) {
	svc := NewService(Deps{Market: &fakeMarket{}, Classifier: &fakeClassifier{}}, DefaultConfig())

	_, err := svc.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTicker)
}

func TestAnalyzeFiltersAndOrdersNews(t *testing.T) {
	news := &fakeNews{articles: []types.NewsArticle{
		{Title: "low", Description: "barely related"},
		{Title: "tie-a", Description: "earnings beat"},
		{Title: "", Description: "", Content: ""},
		{Title: "top", Description: "guidance miss"},
		{Title: "tie-b", Content: "record sales"},
		{Title: "tie-c", Description: "also relevant"},
	}}
	cls := &fakeClassifier{scores: map[string]int{"low": 2, "tie-a": 4, "top": 5, "tie-b": 4, "tie-c": 4}}
	mkt := &fakeMarket{info: &types.StockInfo{Symbol: "ACME", LongName: "Acme Corp"}, candles: trendingCandles(250)}

	svc := NewService(Deps{Market: mkt, News: news, Classifier: cls}, DefaultConfig())
	resp, err := svc.Analyze(context.Background(), " acme ")
	require.NoError(t, err)

	assert.Equal(t, "ACME", news.got.Ticker)
	assert.Equal(t, "Acme Corp", news.got.CompanyName)
	assert.Equal(t, 10, news.got.Limit)

	assert.Equal(t, 6, resp.RawNewsFetchedCount)
	assert.Equal(t, 3, resp.RelevantNewsAnalyzedCount)
	assert.Equal(t, 5, cls.relCalls)

	require.Len(t, resp.NewsWithSentiment, 3)
	titles := []string{resp.NewsWithSentiment[0].Title, resp.NewsWithSentiment[1].Title, resp.NewsWithSentiment[2].Title}
	assert.Equal(t, []string{"top", "tie-a", "tie-b"}, titles)

	top := resp.NewsWithSentiment[0]
	assert.Equal(t, 5, top.RelevanceScore)
	assert.Equal(t, "scored top", top.RelevanceJustification)
	assert.Equal(t, types.SentimentNegative, top.Sentiment)
	assert.Equal(t, "guidance miss", top.Description)

	assert.Contains(t, cls.sentiments, "tie-b. record sales")
	assert.Empty(t, resp.ErrorMessage)
	assert.Empty(t, resp.TechnicalIndicators.Error)
	assert.NotEqual(t, types.OutlookIndeterminate, resp.OverallAssessment)
	assert.Equal(t, 3, resp.AssessmentBreakdown.NewsItems)
}

func TestAnalyzeDegradesWhenCollaboratorsFail(t *testing.T) {
	mkt := &fakeMarket{infoErr: errors.New("quote down"), historyErr: errors.New("history down")}
	news := &fakeNews{}

	svc := NewService(Deps{Market: mkt, News: news, Classifier: &fakeClassifier{}}, DefaultConfig())
	resp, err := svc.Analyze(context.Background(), "ZZZZ")
	require.NoError(t, err)

	assert.Nil(t, resp.StockInfo)
	assert.Equal(t, "Could not fetch stock info for ZZZZ.", resp.ErrorMessage)
	assert.Equal(t, "ZZZZ", news.got.CompanyName)
	assert.Equal(t, "Could not fetch historical data for ZZZZ.", resp.TechnicalIndicators.Error)
	assert.NotNil(t, resp.NewsWithSentiment)
	assert.Empty(t, resp.NewsWithSentiment)
	assert.Equal(t, types.OutlookIndeterminate, resp.OverallAssessment)
	assert.Equal(t, types.ConfidenceVeryLow, resp.AssessmentConfidence)
}

func TestAnalyzeWithoutNewsSource(t *testing.T) {
	mkt := &fakeMarket{info: &types.StockInfo{Symbol: "ACME"}, candles: trendingCandles(250)}

	svc := NewService(Deps{Market: mkt, Classifier: &fakeClassifier{}}, DefaultConfig())
	resp, err := svc.Analyze(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Zero(t, resp.RawNewsFetchedCount)
	assert.Contains(t, resp.AssessmentDrivers, "No relevant news with sentiment to score.")
}

func TestAnalyzeRespectsThresholdAndCap(t *testing.T) {
	news := &fakeNews{articles: []types.NewsArticle{
		{Title: "a", Description: "x"},
		{Title: "b", Description: "x"},
	}}
	cls := &fakeClassifier{scores: map[string]int{"a": 3, "b": 5}}
	cfg := DefaultConfig()
	cfg.MaxRelevantArticles = 1

	svc := NewService(Deps{Market: &fakeMarket{}, News: news, Classifier: cls}, cfg)
	resp, err := svc.Analyze(context.Background(), "ACME")
	require.NoError(t, err)

	require.Len(t, resp.NewsWithSentiment, 1)
	assert.Equal(t, "b", resp.NewsWithSentiment[0].Title)
}

func TestSentimentText(t *testing.T) {
	assert.Equal(t, "T. D", sentimentText(types.NewsArticle{Title: "T", Description: "D", Content: "C"}))
	assert.Equal(t, "T. C", sentimentText(types.NewsArticle{Title: "T", Content: "C"}))
	assert.Equal(t, "T", sentimentText(types.NewsArticle{Title: "T"}))

	long := sentimentText(types.NewsArticle{Title: "T", Description: strings.Repeat("é", 3000)})
	assert.Len(t, []rune(long), maxSentimentText)
}
