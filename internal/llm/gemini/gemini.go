// Package gemini calls the Google Gemini generateContent REST endpoint.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"stock-analysis-agent/internal/api"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/llm"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/store"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-1.5-flash-latest"
)

// GeminiCompleter implements interfaces.Completer for Gemini models.
type GeminiCompleter struct {
	client      *api.Client
	apiKey      string
	model       string
	maxTokens   int
	temperature float32
}

var _ interfaces.Completer = (*GeminiCompleter)(nil)

func NewGeminiCompleter(cfg *store.Config) *GeminiCompleter {
	endpoint := defaultEndpoint
	if cfg.LLM.Endpoint != "" {
		endpoint = cfg.LLM.Endpoint
	}
	model := cfg.LLM.Model
	if model == "" {
		model = defaultModel
	}
	return &GeminiCompleter{
		client: api.NewClient(
			api.WithBaseURL(endpoint),
			api.WithTimeout(cfg.LLM.Timeout),
			api.WithLogging(true),
		),
		apiKey:      cfg.Secrets.GeminiAPIKey,
		model:       model,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini: %w: GEMINI_API_KEY missing", llm.ErrNotConfigured)
	}

	req := api.NewRequest(http.MethodPost, "/v1beta/models/"+url.PathEscape(g.model)+":generateContent").
		WithContext(ctx).
		WithQuery(url.Values{"key": {g.apiKey}}).
		WithBody(generateRequest{
			Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
			GenerationConfig: generationConfig{
				Temperature:     g.temperature,
				MaxOutputTokens: g.maxTokens,
			},
		})

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}

	var r generateResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		logger.Warn(ctx, "Gemini blocked prompt", "reason", r.PromptFeedback.BlockReason, "model", g.model)
		return "", fmt.Errorf("%w: Blocked by Gemini API due to %s", llm.ErrBlocked, r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w", llm.ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini: %w (finish reason %s)", llm.ErrEmptyResponse, r.Candidates[0].FinishReason)
	}
	return sb.String(), nil
}
