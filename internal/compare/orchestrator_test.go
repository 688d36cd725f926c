package compare

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vnmchuo/llm-compare/internal/registry"
	"github.com/vnmchuo/llm-compare/internal/tokens"
)

type mockInvoker struct {
	invoke func(ctx context.Context, m registry.Model, prompt string) ModelResult
}

func (i *mockInvoker) Invoke(ctx context.Context, m registry.Model, prompt string) ModelResult {
	return i.invoke(ctx, m, prompt)
}

func testModels() []registry.Model {
	return []registry.Model{
		{ID: "a/alpha", Name: "Alpha", Provider: "A", InputPricePer1K: 0.005, OutputPricePer1K: 0.015},
		{ID: "b/beta", Name: "Beta", Provider: "B", InputPricePer1K: 0.003, OutputPricePer1K: 0.015},
		{ID: "c/gamma", Name: "Gamma", Provider: "C", InputPricePer1K: 0.005, OutputPricePer1K: 0.015},
	}
}

func newTestOrchestrator(invoke func(ctx context.Context, m registry.Model, prompt string) ModelResult) *Orchestrator {
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewOrchestrator(&mockInvoker{invoke: invoke}, testModels(), tracer)
}

func okResult(m registry.Model, text string) ModelResult {
	return ModelResult{
		ModelID:          m.ID,
		ModelName:        m.Name,
		Provider:         m.Provider,
		ResponseText:     text,
		PromptTokens:     10,
		CompletionTokens: 20,
		TotalTokens:      30,
		ResponseTimeMs:   5,
		EstimatedCost:    0.001,
	}
}

func TestCompare_RegistryOrder(t *testing.T) {
	// Slower models earlier in the registry must not lose their slot to
	// faster ones.
	delays := map[string]time.Duration{
		"a/alpha": 60 * time.Millisecond,
		"b/beta":  30 * time.Millisecond,
		"c/gamma": 1 * time.Millisecond,
	}
	o := newTestOrchestrator(func(ctx context.Context, m registry.Model, prompt string) ModelResult {
		time.Sleep(delays[m.ID])
		return okResult(m, "hello from "+m.Name)
	})

	results := o.Compare(context.Background(), "test prompt")

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, m := range testModels() {
		if results[i].ModelID != m.ID {
			t.Errorf("Expected result %d to be %s, got %s", i, m.ID, results[i].ModelID)
		}
	}
}

func TestCompare_SingleFailureIsolated(t *testing.T) {
	prompt := "what is the capital of france"
	o := newTestOrchestrator(func(ctx context.Context, m registry.Model, prompt string) ModelResult {
		if m.ID == "b/beta" {
			promptTokens := tokens.Estimate(prompt)
			return ModelResult{
				ModelID:        m.ID,
				ModelName:      m.Name,
				Provider:       m.Provider,
				PromptTokens:   promptTokens,
				TotalTokens:    promptTokens,
				ResponseTimeMs: 12,
				Error:          "request timed out",
			}
		}
		return okResult(m, "Paris")
	})

	results := o.Compare(context.Background(), prompt)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	failed := results[1]
	if failed.Error == "" {
		t.Error("Expected beta to carry an error")
	}
	if failed.ResponseText != "" {
		t.Errorf("Expected empty response text on failure, got %q", failed.ResponseText)
	}
	if failed.CompletionTokens != 0 {
		t.Errorf("Expected 0 completion tokens on failure, got %d", failed.CompletionTokens)
	}
	if failed.TotalTokens != tokens.Estimate(prompt) {
		t.Errorf("Expected total tokens %d on failure, got %d", tokens.Estimate(prompt), failed.TotalTokens)
	}
	if failed.EstimatedCost != 0 {
		t.Errorf("Expected 0 cost on failure, got %v", failed.EstimatedCost)
	}

	for _, i := range []int{0, 2} {
		if results[i].Error != "" {
			t.Errorf("Expected result %d to succeed, got error %q", i, results[i].Error)
		}
		if results[i].ResponseText != "Paris" {
			t.Errorf("Expected result %d to keep its response, got %q", i, results[i].ResponseText)
		}
	}
}

func TestCompare_PanicSynthesizesResult(t *testing.T) {
	prompt := "boom"
	o := newTestOrchestrator(func(ctx context.Context, m registry.Model, prompt string) ModelResult {
		if m.ID == "c/gamma" {
			panic("invoker exploded")
		}
		return okResult(m, "fine")
	})

	results := o.Compare(context.Background(), prompt)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	synth := results[2]
	if synth.ModelID != "c/gamma" || synth.ModelName != "Gamma" || synth.Provider != "C" {
		t.Errorf("Expected identity from registry entry, got %+v", synth)
	}
	if !strings.Contains(synth.Error, "invoker exploded") {
		t.Errorf("Expected panic reason in error, got %q", synth.Error)
	}
	if synth.ResponseText != "" || synth.CompletionTokens != 0 || synth.EstimatedCost != 0 {
		t.Errorf("Expected empty failure fields, got %+v", synth)
	}
	if synth.PromptTokens != tokens.Estimate(prompt) || synth.TotalTokens != synth.PromptTokens {
		t.Errorf("Expected estimated prompt tokens, got %+v", synth)
	}
	if synth.ResponseTimeMs != 0 {
		t.Errorf("Expected 0 response time for synthesized result, got %d", synth.ResponseTimeMs)
	}

	if results[0].Error != "" || results[1].Error != "" {
		t.Error("Panic in one model must not affect the others")
	}
}

func TestCompare_AlwaysNResults(t *testing.T) {
	o := newTestOrchestrator(func(ctx context.Context, m registry.Model, prompt string) ModelResult {
		panic("every model call fails")
	})

	results := o.Compare(context.Background(), "prompt")
	if len(results) != 3 {
		t.Fatalf("Expected 3 results even when everything panics, got %d", len(results))
	}
	for i, r := range results {
		if r.Error == "" {
			t.Errorf("Expected result %d to carry an error", i)
		}
	}
}
