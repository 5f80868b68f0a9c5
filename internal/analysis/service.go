// Package analysis runs one stock analysis end to end: market data,
// indicators, news relevance and sentiment, then the overall assessment.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-analysis-agent/internal/assessment"
	"stock-analysis-agent/internal/indicators"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/market"
	"stock-analysis-agent/internal/types"
)

var ErrEmptyTicker = errors.New("ticker symbol cannot be empty")

const (
	maxSentimentText = 2000
	notAnalyzed      = "Not analyzed or no content."
)

type Config struct {
	HistoryDays         int
	MaxArticles         int
	RelevanceThreshold  int
	MaxRelevantArticles int
	Concurrency         int
	Timeout             time.Duration
}

func DefaultConfig() Config {
	return Config{
		HistoryDays:         365,
		MaxArticles:         10,
		RelevanceThreshold:  4,
		MaxRelevantArticles: 3,
		Concurrency:         4,
	}
}

// Deps are the collaborators of one Service. News may be nil when no news
// source is configured; Market and Classifier are required.
type Deps struct {
	Market     interfaces.MarketData
	News       interfaces.NewsFetcher
	Classifier interfaces.Classifier
	Indicators *indicators.Calculator
}

type Service struct {
	deps Deps
	cfg  Config
}

var _ interfaces.Analyzer = (*Service)(nil)

func NewService(deps Deps, cfg Config) *Service {
	if deps.Indicators == nil {
		deps.Indicators = indicators.NewCalculator(indicators.DefaultConfig())
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 365
	}
	return &Service{deps: deps, cfg: cfg}
}

// scored pairs an article with its relevance result.
type scored struct {
	article   types.NewsArticle
	relevance types.RelevanceResult
}

// Analyze only fails for an empty ticker. Every collaborator failure is
// absorbed into a weaker response.
func (s *Service) Analyze(ctx context.Context, ticker string) (*types.AnalysisResponse, error) {
	ticker = market.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	info, candles, infoErr := s.fetchMarket(ctx, ticker)
	ind := s.deps.Indicators.Calculate(ticker, candles)

	companyName := ticker
	if info != nil && info.LongName != "" {
		companyName = info.LongName
	}

	var articles []types.NewsArticle
	if s.deps.News != nil {
		articles = s.deps.News.Articles(ctx, types.NewsQuery{
			Ticker:      ticker,
			CompanyName: companyName,
			Limit:       s.cfg.MaxArticles,
		})
	}

	ranked := s.rankByRelevance(ctx, articles, ticker, companyName)
	selected := s.selectRelevant(ranked)
	items := s.classifySentiment(ctx, selected, ticker)

	result := assessment.Assess(ind, items)

	resp := &types.AnalysisResponse{
		StockInfo:                 info,
		TechnicalIndicators:       ind,
		NewsWithSentiment:         items,
		OverallAssessment:         result.Outlook,
		AssessmentConfidence:      result.Confidence,
		AssessmentDrivers:         result.Drivers,
		AssessmentBreakdown:       result.Breakdown,
		RawNewsFetchedCount:       len(articles),
		RelevantNewsAnalyzedCount: len(selected),
	}
	if infoErr != nil {
		resp.ErrorMessage = fmt.Sprintf("Could not fetch stock info for %s.", ticker)
	}
	return resp, nil
}

// fetchMarket loads stock info and price history concurrently. A history
// failure yields nil candles, which the calculator turns into an error marker.
func (s *Service) fetchMarket(ctx context.Context, ticker string) (*types.StockInfo, []types.Candle, error) {
	var (
		g       errgroup.Group
		info    *types.StockInfo
		candles []types.Candle
		infoErr error
	)
	g.Go(func() error {
		var err error
		if info, err = s.deps.Market.StockInfo(ctx, ticker); err != nil {
			logger.Degraded(ctx, ticker, "stock_info", err)
			info, infoErr = nil, err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if candles, err = s.deps.Market.History(ctx, ticker, s.cfg.HistoryDays); err != nil {
			logger.Degraded(ctx, ticker, "history", err)
			candles = nil
		}
		return nil
	})
	_ = g.Wait()
	return info, candles, infoErr
}

// rankByRelevance scores every article that has a title or snippet using a
// bounded pool. The result is ordered by score, highest first, with ties kept
// in fetch order regardless of completion order.
func (s *Service) rankByRelevance(ctx context.Context, articles []types.NewsArticle, ticker, companyName string) []scored {
	candidates := make([]scored, 0, len(articles))
	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Snippet()) == "" {
			logger.Debug(ctx, "Skipping article without title or snippet", "url", a.URL)
			continue
		}
		candidates = append(candidates, scored{article: a})
	}
	if len(candidates) == 0 {
		return candidates
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i := range candidates {
		i := i
		g.Go(func() error {
			a := candidates[i].article
			candidates[i].relevance = s.deps.Classifier.ClassifyRelevance(ctx, a.Title, a.Snippet(), ticker, companyName)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].relevance.Score > candidates[j].relevance.Score
	})
	return candidates
}

func (s *Service) selectRelevant(ranked []scored) []scored {
	selected := make([]scored, 0, s.cfg.MaxRelevantArticles)
	for _, r := range ranked {
		if len(selected) >= s.cfg.MaxRelevantArticles {
			break
		}
		if r.relevance.Score >= s.cfg.RelevanceThreshold {
			selected = append(selected, r)
		}
	}
	return selected
}

func (s *Service) classifySentiment(ctx context.Context, selected []scored, ticker string) []types.NewsItem {
	items := make([]types.NewsItem, len(selected))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, sc := range selected {
		i, sc := i, sc
		g.Go(func() error {
			a := sc.article
			res := types.SentimentResult{Sentiment: types.SentimentNeutral, Justification: notAnalyzed}
			if text := sentimentText(a); strings.TrimSpace(text) != "" {
				res = s.deps.Classifier.ClassifySentiment(ctx, text, ticker)
			}
			items[i] = types.NewsItem{
				Title:                  a.Title,
				Description:            a.Description,
				URL:                    a.URL,
				PublishedAt:            a.PublishedAt,
				Source:                 a.Source,
				RelevanceScore:         sc.relevance.Score,
				RelevanceJustification: sc.relevance.Justification,
				Sentiment:              res.Sentiment,
				Justification:          res.Justification,
			}
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// sentimentText is the title followed by the description, or the content
// when there is no description, cut to the classifier's input limit.
func sentimentText(a types.NewsArticle) string {
	text := a.Title
	desc := a.Description
	if desc == "" {
		desc = a.Content
	}
	if desc != "" {
		text += ". " + desc
	}
	r := []rune(text)
	if len(r) > maxSentimentText {
		text = string(r[:maxSentimentText])
	}
	return text
}
