package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stock-analysis-agent/internal/api"
	"stock-analysis-agent/internal/cache"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/types"
)

// ClassifierConfig tunes retries, throttling and caching around the completer.
type ClassifierConfig struct {
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MaxRetries:        2,
		RetryDelay:        5 * time.Second,
		RequestsPerMinute: 60,
		CacheTTL:          6 * time.Hour,
	}
}

// Classifier turns model completions into relevance and sentiment results.
// It never returns an error; failures are folded into the result.
type Classifier struct {
	completer interfaces.Completer
	cache     cache.Cache
	limiter   *RateLimiter
	retry     *api.RetryConfig
	cacheTTL  time.Duration
}

var _ interfaces.Classifier = (*Classifier)(nil)

// NewClassifier builds a classifier. A nil cache disables response caching.
func NewClassifier(completer interfaces.Completer, c cache.Cache, cfg ClassifierConfig) *Classifier {
	if c == nil {
		c = cache.Nop{}
	}
	var limiter *RateLimiter
	if cfg.RequestsPerMinute > 0 {
		limiter = PerMinute(cfg.RequestsPerMinute)
	}
	return &Classifier{
		completer: completer,
		cache:     c,
		limiter:   limiter,
		retry: &api.RetryConfig{
			MaxAttempts: cfg.MaxRetries + 1,
			InitialWait: cfg.RetryDelay,
			Retryable:   IsRetryable,
		},
		cacheTTL: cfg.CacheTTL,
	}
}

// complete sends prompt through the limiter with retries. Successful
// responses are cached by prompt hash.
func (c *Classifier) complete(ctx context.Context, prompt string) (string, error) {
	key := cache.Key("llm", cache.HashKey(prompt))
	return cache.GetOrLoad(ctx, c.cache, key, c.cacheTTL, func(ctx context.Context) (string, error) {
		var text string
		err := api.Retry(ctx, c.retry, func(int) error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			out, err := c.completer.Complete(ctx, prompt)
			if err != nil {
				return err
			}
			text = out
			return nil
		})
		return text, err
	})
}

func (c *Classifier) ClassifyRelevance(ctx context.Context, title, snippet, ticker, companyName string) types.RelevanceResult {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(snippet) == "" {
		return types.RelevanceResult{Score: 1, Justification: "No article content provided."}
	}

	raw, err := c.complete(ctx, buildRelevancePrompt(title, snippet, ticker, companyName))
	if err != nil {
		logger.Warn(ctx, "Relevance classification failed", "ticker", ticker, "error", err)
		return types.RelevanceResult{Score: 1, Justification: "Error calling model: " + err.Error()}
	}
	return parseRelevance(raw)
}

func (c *Classifier) ClassifySentiment(ctx context.Context, text, ticker string) types.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return types.SentimentResult{Sentiment: types.SentimentNeutral, Justification: "No text content provided for analysis."}
	}

	raw, err := c.complete(ctx, buildSentimentPrompt(text, ticker))
	if err != nil {
		logger.Warn(ctx, "Sentiment classification failed", "ticker", ticker, "error", err)
		return types.SentimentResult{Sentiment: types.SentimentError, Justification: "Error calling model for sentiment: " + err.Error()}
	}
	return parseSentiment(raw)
}

// StripFences removes a markdown code fence around a JSON reply.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeObject(raw string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(StripFences(raw))))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return m, nil
}

func parseRelevance(raw string) types.RelevanceResult {
	m, err := decodeObject(raw)
	if err != nil {
		return types.RelevanceResult{Score: 1, Justification: "Could not parse relevance JSON. Raw: " + truncateRunes(raw, 100)}
	}
	score, hasScore := m["relevance_score"]
	justification, hasJustification := m["relevance_justification"]
	if !hasScore || !hasJustification {
		return types.RelevanceResult{Score: 1, Justification: "Invalid JSON structure for relevance: " + truncateRunes(raw, 100)}
	}

	n, ok := integerScore(score)
	if !ok {
		return types.RelevanceResult{
			Score:         1,
			Justification: fmt.Sprintf("Invalid score from model: %v. Original justification: %v", score, justification),
		}
	}
	return types.RelevanceResult{Score: n, Justification: asString(justification)}
}

// integerScore accepts only whole numbers in 1..5; 4.0 and "4" are rejected.
func integerScore(v any) (int, bool) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return int(n), true
}

func parseSentiment(raw string) types.SentimentResult {
	m, err := decodeObject(raw)
	if err != nil {
		return types.SentimentResult{
			Sentiment:     keywordSentiment(raw),
			Justification: "Could not parse sentiment JSON. Raw response: " + truncateRunes(raw, 200),
		}
	}
	label, hasLabel := m["sentiment"]
	justification, hasJustification := m["justification"]
	if !hasLabel || !hasJustification {
		return types.SentimentResult{
			Sentiment:     types.SentimentError,
			Justification: "Invalid JSON structure from model for sentiment: " + truncateRunes(raw, 100),
		}
	}

	res := types.SentimentResult{Justification: asString(justification)}
	if s, ok := normalizeSentiment(asString(label)); ok {
		res.Sentiment = s
		return res
	}
	res.Sentiment = types.SentimentNeutral
	res.Justification += " (Original sentiment was invalid, defaulted to Neutral)"
	return res
}

func normalizeSentiment(label string) (types.Sentiment, bool) {
	if label == "" {
		return "", false
	}
	capitalized := strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
	switch s := types.Sentiment(capitalized); s {
	case types.SentimentPositive, types.SentimentNegative, types.SentimentNeutral:
		return s, true
	}
	return "", false
}

func keywordSentiment(raw string) types.Sentiment {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "positive"):
		return types.SentimentPositive
	case strings.Contains(lower, "negative"):
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
