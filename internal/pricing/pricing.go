// Package pricing converts token counts into an estimated USD cost using a
// model's per-1000-token prices.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vnmchuo/llm-compare/internal/registry"
)

var thousand = decimal.NewFromInt(1000)

// Cost returns (promptTokens/1000 * input price) + (completionTokens/1000 *
// output price). The arithmetic runs on decimals so repeated small charges
// don't accumulate float drift before the final conversion.
func Cost(promptTokens, completionTokens int, m registry.Model) float64 {
	promptCost := decimal.NewFromInt(int64(promptTokens)).
		Div(thousand).
		Mul(decimal.NewFromFloat(m.InputPricePer1K))
	completionCost := decimal.NewFromInt(int64(completionTokens)).
		Div(thousand).
		Mul(decimal.NewFromFloat(m.OutputPricePer1K))
	cost, _ := promptCost.Add(completionCost).Float64()
	return cost
}
