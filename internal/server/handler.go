package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"stock-analysis-agent/internal/analysis"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/store"
)

const welcomeMessage = "Welcome to the Stock Analysis Agent API! Visit /docs for API documentation."

// AnalysisHandler serves the analysis endpoints.
type AnalysisHandler struct {
	analyzer     interfaces.Analyzer
	capabilities store.Capabilities
}

var _ Handler = (*AnalysisHandler)(nil)

func NewAnalysisHandler(analyzer interfaces.Analyzer, caps store.Capabilities) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, capabilities: caps}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/healthz", h.Health)
	e.POST("/analyze_stock/", h.AnalyzeStock)
	e.POST("/analyze_stock", h.AnalyzeStock)
}

func (h *AnalysisHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, WelcomeResponse{Message: welcomeMessage})
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Capabilities: h.capabilities})
}

// AnalyzeStock answers with the analysis itself, not the API envelope.
func (h *AnalysisHandler) AnalyzeStock(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verrs := ReadAndValidateRequest(c, req); verrs != nil {
		return BadRequestResponse(c, verrs[0].Message, verrs)
	}

	ctx := c.Request().Context()
	resp, err := h.analyzer.Analyze(ctx, req.Ticker)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyTicker) {
			return AppErrorResponse(c, NewAppError("ERR_REQUIRED", "ticker", fieldMessages["ticker.required"], http.StatusBadRequest).WithError(err))
		}
		logger.ErrorWithErr(ctx, "Analysis failed", err, "ticker", req.Ticker)
		return AppErrorResponse(c, InternalError("Analysis failed").WithError(err))
	}
	return c.JSON(http.StatusOK, resp)
}
