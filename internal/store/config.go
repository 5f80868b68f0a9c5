package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"stock-analysis-agent/internal/indicators"
)

const (
	MarketYahoo   = "YAHOO"
	MarketPolygon = "POLYGON"
	MarketKite    = "KITE"

	NewsSourceNewsAPI   = "NEWSAPI"
	NewsSourcePolygon   = "POLYGON"
	NewsSourceGoogleRSS = "GOOGLE_RSS"

	LLMGemini = "GEMINI"
	LLMOpenAI = "OPENAI"
	LLMClaude = "CLAUDE"
	LLMNone   = "NONE"

	CacheMemory  = "MEMORY"
	CacheRedis   = "REDIS"
	CacheLayered = "LAYERED"
	CacheNone    = "NONE"
)

type Config struct {
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8000" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"http://localhost:3000\",\"http://localhost:5173\"]"`
	} `yaml:"server"`
	Market struct {
		Provider    string        `yaml:"provider" default:"YAHOO" validate:"oneof=YAHOO POLYGON KITE"`
		HistoryDays int           `yaml:"history_days" default:"365" validate:"gte=30"`
		Exchange    string        `yaml:"exchange" default:"NSE"`
		Timeout     time.Duration `yaml:"timeout" default:"20s"`
		CacheTTL    time.Duration `yaml:"cache_ttl" default:"15m"`
	} `yaml:"market"`
	News struct {
		Sources     []string      `yaml:"sources" default:"[\"NEWSAPI\",\"GOOGLE_RSS\"]" validate:"dive,oneof=NEWSAPI POLYGON GOOGLE_RSS"`
		MaxArticles int           `yaml:"max_articles" default:"10" validate:"gt=0,lte=100"`
		Language    string        `yaml:"language" default:"en"`
		SortBy      string        `yaml:"sort_by" default:"relevancy" validate:"oneof=relevancy popularity publishedAt"`
		Timeout     time.Duration `yaml:"timeout" default:"20s"`
		CacheTTL    time.Duration `yaml:"cache_ttl" default:"30m"`
	} `yaml:"news"`
	LLM struct {
		Provider          string        `yaml:"provider" default:"GEMINI" validate:"oneof=GEMINI OPENAI CLAUDE NONE"`
		Model             string        `yaml:"model"`
		Endpoint          string        `yaml:"endpoint"`
		MaxTokens         int           `yaml:"max_tokens" default:"512" validate:"gt=0"`
		Temperature       float32       `yaml:"temperature" default:"0.2" validate:"gte=0,lte=2"`
		Timeout           time.Duration `yaml:"timeout" default:"60s"`
		MaxRetries        int           `yaml:"max_retries" default:"2" validate:"gte=0"`
		RetryDelay        time.Duration `yaml:"retry_delay" default:"5s"`
		RequestsPerMinute int           `yaml:"requests_per_minute" default:"60" validate:"gt=0"`
		CacheTTL          time.Duration `yaml:"cache_ttl" default:"6h"`
	} `yaml:"llm"`
	Analysis struct {
		RelevanceThreshold  int           `yaml:"relevance_threshold" default:"4" validate:"min=1,max=5"`
		MaxRelevantArticles int           `yaml:"max_relevant_articles" default:"3" validate:"gt=0"`
		Concurrency         int           `yaml:"concurrency" default:"4" validate:"gt=0,lte=32"`
		Timeout             time.Duration `yaml:"timeout" default:"90s"`
	} `yaml:"analysis"`
	Indicators indicators.Config `yaml:"indicators"`
	Cache      struct {
		Backend string `yaml:"backend" default:"MEMORY" validate:"oneof=MEMORY REDIS LAYERED NONE"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"stockagent"`
			PoolSize int    `yaml:"pool_size" default:"10"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Secrets Secrets `yaml:"-"`
}

// Secrets come from the environment only.
type Secrets struct {
	NewsAPIKey      string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	ClaudeAPIKey    string
	PolygonAPIKey   string
	KiteAPIKey      string
	KiteAccessToken string
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Market.Provider == MarketPolygon && c.Secrets.PolygonAPIKey == "" {
		return errors.New("market.provider POLYGON requires POLYGON_API_KEY")
	}
	if c.Market.Provider == MarketKite && (c.Secrets.KiteAPIKey == "" || c.Secrets.KiteAccessToken == "") {
		return errors.New("market.provider KITE requires KITE_API_KEY and KITE_ACCESS_TOKEN")
	}
	if c.Market.Provider == MarketKite && c.Market.Exchange == "" {
		return errors.New("market.exchange cannot be empty for KITE")
	}
	if len(c.Server.CORSOrigins) == 0 {
		return errors.New("server.cors_origins cannot be empty")
	}
	return nil
}

// Default returns a config with every default applied and env overrides read.
func Default() (*Config, error) {
	return load(nil)
}

// LoadConfig reads a YAML file. A missing file is not an error: defaults and
// environment overrides still apply.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return load(nil)
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return load(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return load(b)
}

func load(raw []byte) (*Config, error) {
	var c Config
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}

	c.applyEnv()
	c.applyProviderDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	c.Secrets = Secrets{
		NewsAPIKey:      os.Getenv("NEWS_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		ClaudeAPIKey:    firstEnv("ANTHROPIC_API_KEY", "CLAUDE_API_KEY"),
		PolygonAPIKey:   os.Getenv("POLYGON_API_KEY"),
		KiteAPIKey:      os.Getenv("KITE_API_KEY"),
		KiteAccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MARKET_PROVIDER"); v != "" {
		c.Market.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("NEWS_SOURCES"); v != "" {
		c.News.Sources = splitUpper(v)
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("CLAUDE_API_ENDPOINT"); v != "" && c.LLM.Provider == LLMClaude {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = strings.ToUpper(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
}

func (c *Config) applyProviderDefaults() {
	if c.LLM.Model != "" {
		return
	}
	switch c.LLM.Provider {
	case LLMGemini:
		c.LLM.Model = "gemini-1.5-flash-latest"
	case LLMOpenAI:
		c.LLM.Model = "gpt-4o-mini"
	case LLMClaude:
		c.LLM.Model = "claude-3-5-haiku-latest"
	}
}

// LLMKey returns the API key for the configured provider.
func (c *Config) LLMKey() string {
	switch c.LLM.Provider {
	case LLMGemini:
		return c.Secrets.GeminiAPIKey
	case LLMOpenAI:
		return c.Secrets.OpenAIAPIKey
	case LLMClaude:
		return c.Secrets.ClaudeAPIKey
	default:
		return ""
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitUpper(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
