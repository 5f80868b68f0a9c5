package claude

import (
	"context"
	"fmt"
	"strings"

	"stock-analysis-agent/internal/api"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/llm"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/store"
	"stock-analysis-agent/internal/trace"
)

const (
	defaultEndpoint  = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	systemPrompt     = "You are a financial analyst who rates news for equity investors. Respond ONLY with valid JSON."
)

// ClaudeCompleter calls the Anthropic Messages API.
type ClaudeCompleter struct {
	cfg      *store.Config
	client   *api.Client
	endpoint string
}

var _ interfaces.Completer = (*ClaudeCompleter)(nil)

// NewClaudeCompleter uses cfg.LLM.Endpoint as the API base when set, for
// proxies or gateways in front of Anthropic.
func NewClaudeCompleter(cfg *store.Config) *ClaudeCompleter {
	endpoint := defaultEndpoint
	if cfg.LLM.Endpoint != "" {
		endpoint = strings.TrimSuffix(strings.TrimRight(cfg.LLM.Endpoint, "/"), "/v1/messages")
	}
	return &ClaudeCompleter{
		cfg:      cfg,
		endpoint: endpoint,
		client: api.NewClient(
			api.WithBaseURL(endpoint),
			api.WithTimeout(cfg.LLM.Timeout),
			api.WithHeader("anthropic-version", anthropicVersion),
			api.WithLogging(true),
		),
	}
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (d *ClaudeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	apiKey := d.cfg.Secrets.ClaudeAPIKey
	if apiKey == "" {
		return "", fmt.Errorf("claude: %w: ANTHROPIC_API_KEY missing", llm.ErrNotConfigured)
	}

	reqBody := map[string]any{
		"model":  d.cfg.LLM.Model,
		"system": systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  d.cfg.LLM.MaxTokens,
		"temperature": d.cfg.LLM.Temperature,
	}

	logger.Debug(ctx, "Sending request to Claude", "model", d.cfg.LLM.Model, "endpoint", d.endpoint)
	resp, err := d.client.POST(ctx, "/v1/messages", reqBody, map[string]string{"x-api-key": apiKey})
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var r messagesResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var sb strings.Builder
	for _, c := range r.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude: %w (stop reason %s)", llm.ErrEmptyResponse, r.StopReason)
	}
	return sb.String(), nil
}
