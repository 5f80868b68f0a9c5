package server

import (
	"strings"

	"stock-analysis-agent/internal/store"
)

// APIResponse is the envelope for everything except a successful analysis.
type APIResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ValidationError struct {
	Code    string         `json:"code,omitempty"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

type AnalyzeRequest struct {
	Ticker string `json:"ticker" validate:"required,max=12"`
}

// Normalize trims and upper-cases the ticker before validation.
func (r *AnalyzeRequest) Normalize() {
	r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
}

type WelcomeResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status       string             `json:"status"`
	Capabilities store.Capabilities `json:"capabilities"`
}
