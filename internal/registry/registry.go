package registry

import "fmt"

// Model describes one hosted model reachable through the AI gateway,
// with its per-1000-token pricing in USD.
type Model struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Provider         string  `json:"provider"`
	InputPricePer1K  float64 `json:"input_price_per_1k"`
	OutputPricePer1K float64 `json:"output_price_per_1k"`
}

// Default returns the fixed set of models every comparison runs against.
// Slice order is stable and defines the order of comparison results.
func Default() []Model {
	return []Model{
		{
			ID:               "openai/gpt-4o",
			Name:             "GPT-4o",
			Provider:         "OpenAI",
			InputPricePer1K:  0.005,
			OutputPricePer1K: 0.015,
		},
		{
			ID:               "anthropic/claude-3-5-sonnet-20241022",
			Name:             "Claude 3.5 Sonnet",
			Provider:         "Anthropic",
			InputPricePer1K:  0.003,
			OutputPricePer1K: 0.015,
		},
		{
			ID:               "xai/grok-beta",
			Name:             "Grok Beta",
			Provider:         "xAI",
			InputPricePer1K:  0.005,
			OutputPricePer1K: 0.015,
		},
	}
}

// Validate checks that model IDs are unique within the registry.
func Validate(models []Model) error {
	seen := make(map[string]struct{}, len(models))
	for _, m := range models {
		if m.ID == "" {
			return fmt.Errorf("registry: model %q has an empty id", m.Name)
		}
		if _, ok := seen[m.ID]; ok {
			return fmt.Errorf("registry: duplicate model id %q", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}
