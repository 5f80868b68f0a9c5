package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	polygonrest "github.com/polygon-io/client-go/rest"

	"stock-analysis-agent/internal/analysis"
	"stock-analysis-agent/internal/analysis/analysisobs"
	"stock-analysis-agent/internal/cache"
	"stock-analysis-agent/internal/indicators"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/llm"
	"stock-analysis-agent/internal/llm/claude"
	"stock-analysis-agent/internal/llm/gemini"
	"stock-analysis-agent/internal/llm/llmobs"
	"stock-analysis-agent/internal/llm/noop"
	"stock-analysis-agent/internal/llm/openai"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/market"
	"stock-analysis-agent/internal/market/marketobs"
	"stock-analysis-agent/internal/market/polygon"
	"stock-analysis-agent/internal/market/yahoo"
	"stock-analysis-agent/internal/market/zerodha"
	"stock-analysis-agent/internal/metrics"
	"stock-analysis-agent/internal/news"
	"stock-analysis-agent/internal/news/newsobs"
	"stock-analysis-agent/internal/store"
	"stock-analysis-agent/internal/trace"
)

// app holds everything a command needs after startup.
type app struct {
	Config       *store.Config
	Capabilities store.Capabilities
	Analyzer     interfaces.Analyzer
	Metrics      *metrics.Recorder
	cache        cache.Cache
}

func (a *app) Close(ctx context.Context) {
	if err := a.cache.Close(); err != nil {
		logger.Warn(ctx, "Failed to close cache", "error", err)
	}
	if err := trace.Shutdown(ctx); err != nil {
		logger.Warn(ctx, "Failed to shut down tracer", "error", err)
	}
}

func bootstrap(ctx context.Context, configPath string) (*app, error) {
	if err := initializeSystem(); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return nil, err
	}
	caps := cfg.Capabilities()
	logger.Info(ctx, "Capabilities resolved",
		"market", caps.Market.String(),
		"news", caps.News.String(),
		"llm", caps.LLM.String(),
		"redis", caps.Redis.String(),
	)

	c, err := initializeCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rec := metrics.Default()
	mkt, polygonClient := initializeMarket(ctx, cfg, c, rec)
	newsSvc := initializeNews(ctx, cfg, c, rec, polygonClient)
	classifier := initializeClassifier(ctx, cfg, c, rec)

	svc := analysis.NewService(analysis.Deps{
		Market:     mkt,
		News:       newsSvc,
		Classifier: classifier,
		Indicators: indicators.NewCalculator(cfg.Indicators),
	}, analysis.Config{
		HistoryDays:         cfg.Market.HistoryDays,
		MaxArticles:         cfg.News.MaxArticles,
		RelevanceThreshold:  cfg.Analysis.RelevanceThreshold,
		MaxRelevantArticles: cfg.Analysis.MaxRelevantArticles,
		Concurrency:         cfg.Analysis.Concurrency,
		Timeout:             cfg.Analysis.Timeout,
	})

	return &app{
		Config:       cfg,
		Capabilities: caps,
		Analyzer:     analysisobs.Wrap(svc, rec),
		Metrics:      rec,
		cache:        c,
	}, nil
}

// initializeSystem loads .env and starts the logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

func initializeCache(ctx context.Context, cfg *store.Config) (cache.Cache, error) {
	r := cfg.Cache.Redis
	c, err := cache.New(cfg.Cache.Backend, cache.RedisConfig{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
		PoolSize: r.PoolSize,
		Prefix:   r.Prefix,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize cache", err, "backend", cfg.Cache.Backend)
		return nil, fmt.Errorf("cache %s: %w", cfg.Cache.Backend, err)
	}
	logger.Info(ctx, "Cache ready", "backend", cfg.Cache.Backend)
	return c, nil
}

// initializeMarket builds the configured provider with caching and observability.
// The polygon client is returned for reuse by the news source when the market
// provider is polygon.
func initializeMarket(ctx context.Context, cfg *store.Config, c cache.Cache, rec *metrics.Recorder) (interfaces.MarketData, *polygonrest.Client) {
	var (
		base          interfaces.MarketData
		polygonClient *polygonrest.Client
	)

	switch cfg.Market.Provider {
	case store.MarketPolygon:
		p := polygon.New(cfg.Secrets.PolygonAPIKey)
		polygonClient = p.Client()
		base = p
	case store.MarketKite:
		base = zerodha.New(zerodha.Params{
			APIKey:      cfg.Secrets.KiteAPIKey,
			AccessToken: cfg.Secrets.KiteAccessToken,
			Exchange:    cfg.Market.Exchange,
		})
	default:
		base = yahoo.New(yahoo.WithTimeout(cfg.Market.Timeout))
	}
	logger.Info(ctx, "Market data provider selected", "provider", cfg.Market.Provider)

	observed := marketobs.Wrap(base, cfg.Market.Provider, rec)
	return market.NewCached(observed, c, cfg.Market.Provider, cfg.Market.CacheTTL), polygonClient
}

// initializeNews returns nil when no source has the credentials it needs.
func initializeNews(ctx context.Context, cfg *store.Config, c cache.Cache, rec *metrics.Recorder, polygonClient *polygonrest.Client) interfaces.NewsFetcher {
	var sources []interfaces.NewsSource
	for _, name := range cfg.NewsSources() {
		switch name {
		case store.NewsSourceNewsAPI:
			sources = append(sources, news.NewNewsAPIClient(cfg.Secrets.NewsAPIKey,
				news.WithNewsAPITimeout(cfg.News.Timeout),
				news.WithSearch(cfg.News.Language, cfg.News.SortBy),
			))
		case store.NewsSourcePolygon:
			client := polygonClient
			if client == nil {
				client = polygonrest.New(cfg.Secrets.PolygonAPIKey)
			}
			sources = append(sources, news.NewPolygonNewsSource(client))
		case store.NewsSourceGoogleRSS:
			sources = append(sources, news.NewGoogleNewsScraper(cfg.News.Timeout))
		}
	}
	if len(sources) == 0 {
		logger.Warn(ctx, "No news source configured - assessments will use technical indicators only")
		return nil
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	logger.Info(ctx, "News sources configured", "sources", names)

	return news.NewService(newsobs.WrapAll(sources, rec), c, &news.ServiceConfig{
		MaxArticles:   cfg.News.MaxArticles,
		CacheDuration: cfg.News.CacheTTL,
	})
}

func initializeClassifier(ctx context.Context, cfg *store.Config, c cache.Cache, rec *metrics.Recorder) interfaces.Classifier {
	var completer interfaces.Completer
	provider := cfg.LLM.Provider

	switch {
	case cfg.Capabilities().LLM != store.CapabilityPresent:
		completer = noop.NewNoopCompleter()
		provider = store.LLMNone
		logger.Warn(ctx, "No LLM provider configured - relevance and sentiment will degrade to defaults")
	case provider == store.LLMGemini:
		completer = gemini.NewGeminiCompleter(cfg)
	case provider == store.LLMOpenAI:
		completer = openai.NewOpenAICompleter(cfg)
	case provider == store.LLMClaude:
		completer = claude.NewClaudeCompleter(cfg)
	}
	logger.Info(ctx, "LLM provider selected", "provider", provider, "model", cfg.LLM.Model)

	return llm.NewClassifier(llmobs.Wrap(completer, provider, rec), c, llm.ClassifierConfig{
		MaxRetries:        cfg.LLM.MaxRetries,
		RetryDelay:        cfg.LLM.RetryDelay,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		CacheTTL:          cfg.LLM.CacheTTL,
	})
}
