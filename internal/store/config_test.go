package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"NEWS_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "CLAUDE_API_KEY",
	"POLYGON_API_KEY", "KITE_API_KEY", "KITE_ACCESS_TOKEN", "PORT", "MARKET_PROVIDER",
	"NEWS_SOURCES", "LLM_PROVIDER", "LLM_MODEL", "CLAUDE_API_ENDPOINT", "CACHE_BACKEND",
	"REDIS_ADDR", "REDIS_PASSWORD",
}

func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, MarketYahoo, cfg.Market.Provider)
	assert.Equal(t, 10, cfg.News.MaxArticles)
	assert.Equal(t, LLMGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.LLM.RetryDelay)
	assert.Equal(t, 4, cfg.Analysis.RelevanceThreshold)
	assert.Equal(t, 3, cfg.Analysis.MaxRelevantArticles)
	assert.Equal(t, 50, cfg.Indicators.SMAFast)
	assert.Equal(t, 200, cfg.Indicators.SMASlow)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NEWS_SOURCES", "google_rss, newsapi")

	path := writeConfig(t, `
server:
  cors_origins: ["https://app.example.com"]
llm:
  provider: OPENAI
  retry_delay: 250ms
analysis:
  relevance_threshold: 3
indicators:
  sma_fast: 20
  sma_slow: 100
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.RetryDelay)
	assert.Equal(t, 3, cfg.Analysis.RelevanceThreshold)
	assert.Equal(t, 20, cfg.Indicators.SMAFast)
	assert.Equal(t, 14, cfg.Indicators.RSIPeriod)
	assert.Equal(t, []string{NewsSourceGoogleRSS, NewsSourceNewsAPI}, cfg.News.Sources)
	assert.Equal(t, "sk-test", cfg.LLMKey())
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{"bad market provider", "market:\n  provider: BLOOMBERG\n", nil},
		{"polygon without key", "market:\n  provider: POLYGON\n", nil},
		{"kite without token", "market:\n  provider: KITE\n", map[string]string{"KITE_API_KEY": "k"}},
		{"threshold out of range", "analysis:\n  relevance_threshold: 9\n", nil},
		{"unknown news source", "news:\n  sources: [REUTERS]\n", nil},
		{"slow sma not slower", "indicators:\n  sma_fast: 50\n  sma_slow: 40\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	cleanEnv(t)
	_, err := LoadConfig(writeConfig(t, "server: [not a map"))
	assert.ErrorContains(t, err, "parse config")
}

func TestCapabilities(t *testing.T) {
	cleanEnv(t)
	cfg, err := Default()
	require.NoError(t, err)

	caps := cfg.Capabilities()
	assert.Equal(t, CapabilityPresent, caps.Market)
	assert.Equal(t, CapabilityPresent, caps.News, "google rss needs no key")
	assert.Equal(t, CapabilityAbsent, caps.LLM)
	assert.Equal(t, []string{NewsSourceGoogleRSS}, cfg.NewsSources())

	cfg.Secrets.NewsAPIKey = "n"
	cfg.Secrets.GeminiAPIKey = "g"
	caps = cfg.Capabilities()
	assert.Equal(t, CapabilityPresent, caps.LLM)
	assert.Equal(t, []string{NewsSourceNewsAPI, NewsSourceGoogleRSS}, cfg.NewsSources())
	assert.Equal(t, "present", caps.LLM.String())

	cfg.LLM.Provider = LLMNone
	assert.Equal(t, CapabilityAbsent, cfg.Capabilities().LLM)
}
