package pricing

import (
	"testing"

	"github.com/vnmchuo/llm-compare/internal/registry"
)

var testModel = registry.Model{
	ID:               "openai/gpt-4o",
	Name:             "GPT-4o",
	Provider:         "OpenAI",
	InputPricePer1K:  0.005,
	OutputPricePer1K: 0.015,
}

func TestCost_ZeroTokens(t *testing.T) {
	if got := Cost(0, 0, testModel); got != 0 {
		t.Errorf("Expected 0 cost for zero tokens, got %v", got)
	}
}

func TestCost_KnownScenario(t *testing.T) {
	// 100 prompt tokens at $0.005/1k plus 50 completion tokens at $0.015/1k.
	got := Cost(100, 50, testModel)
	if got != 0.00125 {
		t.Errorf("Expected 0.00125, got %v", got)
	}
}

func TestCost_Linear(t *testing.T) {
	single := Cost(100, 50, testModel)
	double := Cost(200, 100, testModel)
	if double != 2*single {
		t.Errorf("Expected doubling tokens to double cost: %v vs 2*%v", double, single)
	}
}

func TestCost_NonNegative(t *testing.T) {
	for _, prompt := range []int{0, 1, 10, 1000, 123456} {
		for _, completion := range []int{0, 1, 10, 1000, 123456} {
			if got := Cost(prompt, completion, testModel); got < 0 {
				t.Errorf("Cost(%d, %d) went negative: %v", prompt, completion, got)
			}
		}
	}
}

func TestCost_UsesBothPrices(t *testing.T) {
	inputOnly := Cost(1000, 0, testModel)
	if inputOnly != testModel.InputPricePer1K {
		t.Errorf("Expected %v for 1000 prompt tokens, got %v", testModel.InputPricePer1K, inputOnly)
	}
	outputOnly := Cost(0, 1000, testModel)
	if outputOnly != testModel.OutputPricePer1K {
		t.Errorf("Expected %v for 1000 completion tokens, got %v", testModel.OutputPricePer1K, outputOnly)
	}
}
