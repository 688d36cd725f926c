package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/vnmchuo/llm-compare/internal/compare"
)

var ErrNotFound = errors.New("comparison not found")

// Comparison is the durable record of one prompt submission.
type Comparison struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// ModelResponse is one persisted per-model row of a comparison.
type ModelResponse struct {
	ID               string    `json:"id"`
	ComparisonID     string    `json:"comparison_id"`
	ModelName        string    `json:"model_name"`
	ResponseText     string    `json:"response_text"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	ResponseTimeMs   int64     `json:"response_time_ms"`
	EstimatedCost    float64   `json:"estimated_cost"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ComparisonDetail is a comparison with its responses, ordered by model
// name as read back from storage.
type ComparisonDetail struct {
	Comparison Comparison      `json:"comparison"`
	Responses  []ModelResponse `json:"responses"`
}

// MarshalBinary implements encoding.BinaryMarshaler for Redis
func (d *ComparisonDetail) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for Redis
func (d *ComparisonDetail) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}

type Store interface {
	// Save writes one comparison and all of its model results in a single
	// transaction and returns the generated comparison id.
	Save(ctx context.Context, prompt string, results []compare.ModelResult) (string, error)
	// GetByID returns ErrNotFound when no comparison has the given id.
	GetByID(ctx context.Context, id string) (*ComparisonDetail, error)
	// Recent returns up to limit comparisons, most recent first.
	Recent(ctx context.Context, limit int) ([]ComparisonDetail, error)
}
