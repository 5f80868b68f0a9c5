package llmobs

import (
	"context"
	"time"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/metrics"
	"stock-analysis-agent/internal/trace"
)

// observableCompleter wraps a Completer with observability (logging, tracing & metrics)
type observableCompleter struct {
	completer interfaces.Completer
	provider  string
	metrics   *metrics.Recorder
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware
func Wrap(completer interfaces.Completer, provider string, rec *metrics.Recorder) interfaces.Completer {
	return &observableCompleter{
		completer: completer,
		provider:  provider,
		metrics:   rec,
	}
}

// Complete sends a prompt with observability
func (oc *observableCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()
	span.SetAttributes(trace.Attributes("provider", oc.provider, "prompt_chars", len(prompt))...)

	start := time.Now()
	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting completion",
		"provider", oc.provider,
		"prompt_chars", len(prompt),
	)

	out, err := oc.completer.Complete(ctx, prompt)
	if oc.metrics != nil {
		oc.metrics.RecordUpstream("llm", oc.provider, "Complete", time.Since(start), err)
	}
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Completion failed", err,
			"provider", oc.provider,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Completion received",
		"provider", oc.provider,
		"response_chars", len(out),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
