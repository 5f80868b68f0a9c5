package analysisobs

import (
	"context"
	"time"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/metrics"
	"stock-analysis-agent/internal/trace"
	"stock-analysis-agent/internal/types"
)

// observableAnalyzer wraps an Analyzer with logging, tracing and assessment metrics
type observableAnalyzer struct {
	analyzer interfaces.Analyzer
	metrics  *metrics.Recorder
}

var _ interfaces.Analyzer = (*observableAnalyzer)(nil)

func Wrap(analyzer interfaces.Analyzer, rec *metrics.Recorder) interfaces.Analyzer {
	return &observableAnalyzer{
		analyzer: analyzer,
		metrics:  rec,
	}
}

func (oa *observableAnalyzer) Analyze(ctx context.Context, ticker string) (*types.AnalysisResponse, error) {
	ctx, span := trace.StartSpan(ctx, "analysis.Analyze")
	defer span.End()
	span.SetAttributes(trace.Attributes("ticker", ticker)...)

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Starting analysis", "ticker", ticker)

	resp, err := oa.analyzer.Analyze(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Analysis rejected", err, "ticker", ticker)
		return nil, err
	}

	score := resp.AssessmentBreakdown.FinalScore
	if oa.metrics != nil {
		oa.metrics.RecordAssessment(string(resp.OverallAssessment), string(resp.AssessmentConfidence), score, len(resp.NewsWithSentiment))
	}
	logger.Assessment(ctx, ticker, string(resp.OverallAssessment), string(resp.AssessmentConfidence), score,
		"raw_news", resp.RawNewsFetchedCount,
		"relevant_news", resp.RelevantNewsAnalyzedCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
