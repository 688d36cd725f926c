package compare

import (
	"context"

	"github.com/vnmchuo/llm-compare/internal/registry"
)

// ModelResult is the normalized outcome of invoking one model for one
// prompt. Exactly one of ResponseText and Error is populated: a failed call
// carries an empty response, zero completion tokens and zero cost.
type ModelResult struct {
	ModelID          string  `json:"model_id"`
	ModelName        string  `json:"model_name"`
	Provider         string  `json:"provider"`
	ResponseText     string  `json:"response_text"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	ResponseTimeMs   int64   `json:"response_time_ms"`
	EstimatedCost    float64 `json:"estimated_cost"`
	Error            string  `json:"error,omitempty"`
}

// Invoker performs one call to a model endpoint. Implementations must not
// return transport or provider failures to the caller; every failure mode
// is folded into the returned ModelResult's Error field.
type Invoker interface {
	Invoke(ctx context.Context, m registry.Model, prompt string) ModelResult
}
