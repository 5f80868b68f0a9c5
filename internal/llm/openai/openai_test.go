package openai

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

func newTestCompleter(t *testing.T, h http.HandlerFunc) *OpenAICompleter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &store.Config{}
	cfg.LLM.Endpoint = srv.URL
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.MaxTokens = 128
	cfg.Secrets.OpenAIAPIKey = "sk-test"
	return NewOpenAICompleter(cfg)
}

func TestComplete(t *testing.T) {
	d := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "user", body.Messages[1]["role"])
		assert.Equal(t, "prompt", body.Messages[1]["content"])

		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  {\"relevance_score\":4}  "},"finish_reason":"stop"}]}`)
	})

	out, err := d.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"relevance_score":4}`, out)
}

func TestCompleteNoChoices(t *testing.T) {
	d := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	})

	_, err := d.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestCompleteContentFilter(t *testing.T) {
	d := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`)
	})

	_, err := d.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, llm.ErrBlocked)
}

func TestCompleteServerError(t *testing.T) {
	d := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := d.Complete(context.Background(), "prompt")
	assert.True(t, llm.IsRetryable(err))
}
