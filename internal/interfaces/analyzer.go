package interfaces

import (
	"context"

	"stock-analysis-agent/internal/types"
)

type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*types.AnalysisResponse, error)
}
