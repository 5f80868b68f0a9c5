package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stock-analysis-agent/internal/api"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/llm"
	"stock-analysis-agent/internal/store"
	"stock-analysis-agent/internal/trace"
)

const systemPrompt = "You are a financial analyst who rates news for equity investors. Respond ONLY with valid JSON."

type OpenAICompleter struct {
	cfg    *store.Config
	client *api.Client
}

var _ interfaces.Completer = (*OpenAICompleter)(nil)

func NewOpenAICompleter(cfg *store.Config) *OpenAICompleter {
	endpoint := "https://api.openai.com"
	if cfg.LLM.Endpoint != "" {
		endpoint = cfg.LLM.Endpoint
	}
	return &OpenAICompleter{
		cfg: cfg,
		client: api.NewClient(
			api.WithBaseURL(endpoint),
			api.WithTimeout(cfg.LLM.Timeout),
			api.WithLogging(true),
		),
	}
}

func (d *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := d.cfg.Secrets.OpenAIAPIKey
	if apiKey == "" {
		return "", fmt.Errorf("openai: %w: OPENAI_API_KEY missing", llm.ErrNotConfigured)
	}

	body := map[string]any{
		"model": d.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": d.cfg.LLM.Temperature,
		"max_tokens":  d.cfg.LLM.MaxTokens,
	}

	resp, err := d.client.POST(ctx, "/v1/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", errors.Join(llm.ErrEmptyResponse, errors.New("no choices"))
	}
	if r.Choices[0].FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: content_filter", llm.ErrBlocked)
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", llm.ErrEmptyResponse
	}
	return out, nil
}
