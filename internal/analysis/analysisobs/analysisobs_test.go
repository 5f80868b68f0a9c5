package analysisobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-agent/internal/metrics"
	"stock-analysis-agent/internal/types"
)

type stubAnalyzer struct {
	err error
}

func (s stubAnalyzer) Analyze(_ context.Context, ticker string) (*types.AnalysisResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.AnalysisResponse{
		StockInfo:            &types.StockInfo{Symbol: ticker},
		OverallAssessment:    types.OutlookPositive,
		AssessmentConfidence: types.ConfidenceMedium,
		AssessmentBreakdown:  types.Breakdown{FinalScore: 0.3},
	}, nil
}

func TestWrapPassesThrough(t *testing.T) {
	a := Wrap(stubAnalyzer{}, metrics.New(prometheus.NewRegistry()))

	resp, err := a.Analyze(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "ACME", resp.StockInfo.Symbol)
	assert.Equal(t, types.OutlookPositive, resp.OverallAssessment)
}

func TestWrapReturnsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := Wrap(stubAnalyzer{err: boom}, nil)

	_, err := a.Analyze(context.Background(), "ACME")
	assert.ErrorIs(t, err, boom)
}
