// Package llm classifies news articles for relevance and sentiment with a
// language model. Provider clients live in subpackages and implement
// interfaces.Completer.
package llm

import (
	"errors"
	"net/http"
	"strings"

	"stock-analysis-agent/internal/api"
)

var (
	// ErrNotConfigured is returned by completers that have no API key.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrBlocked marks a prompt the provider refused to answer.
	ErrBlocked = errors.New("prompt blocked by provider")
	// ErrEmptyResponse marks a response without any text.
	ErrEmptyResponse = errors.New("empty model response")
)

// IsRetryable reports rate limiting and temporary provider failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch api.StatusCode(err) {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	return strings.Contains(err.Error(), "Resource has been exhausted")
}
