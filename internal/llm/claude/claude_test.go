package claude

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/llm"
	"stock-analysis-agent/internal/store"
)

func testConfig(endpoint, key string) *store.Config {
	cfg := &store.Config{}
	cfg.LLM.Endpoint = endpoint
	cfg.LLM.Model = "claude-3-5-haiku-latest"
	cfg.LLM.MaxTokens = 256
	cfg.Secrets.ClaudeAPIKey = key
	return cfg
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, systemPrompt, body["system"])
		assert.EqualValues(t, 256, body["max_tokens"])

		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"{\"sentiment\":\"Negative\",\"justification\":\"Miss.\"}"}],"stop_reason":"end_turn"}`)
	}))
	t.Cleanup(srv.Close)

	out, err := NewClaudeCompleter(testConfig(srv.URL, "ak")).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, `{"sentiment":"Negative","justification":"Miss."}`, out)
}

func TestEndpointAcceptsFullMessagesURL(t *testing.T) {
	c := NewClaudeCompleter(testConfig("https://proxy.local/v1/messages", "ak"))
	assert.Equal(t, "https://proxy.local", c.endpoint)

	c = NewClaudeCompleter(testConfig("", "ak"))
	assert.Equal(t, defaultEndpoint, c.endpoint)
}

func TestCompleteEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"content":[],"stop_reason":"max_tokens"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClaudeCompleter(testConfig(srv.URL, "ak")).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestCompleteWithoutKey(t *testing.T) {
	_, err := NewClaudeCompleter(testConfig("http://127.0.0.1:1", "")).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}
