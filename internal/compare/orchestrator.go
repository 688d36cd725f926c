package compare

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vnmchuo/llm-compare/internal/registry"
	"github.com/vnmchuo/llm-compare/internal/tokens"
)

// Orchestrator fans one prompt out to every registered model concurrently
// and collects one ModelResult per model, in registry order.
type Orchestrator struct {
	invoker Invoker
	models  []registry.Model
	tracer  trace.Tracer
}

func NewOrchestrator(invoker Invoker, models []registry.Model, tracer trace.Tracer) *Orchestrator {
	return &Orchestrator{
		invoker: invoker,
		models:  models,
		tracer:  tracer,
	}
}

// Compare invokes every model concurrently and waits for all of them to
// settle. The returned slice always has exactly one entry per registry
// model, in registry order, regardless of completion order or failures.
// Compare itself never fails: a model call that panics past the invoker's
// own safety net is converted into a failed ModelResult for that slot.
func (o *Orchestrator) Compare(ctx context.Context, prompt string) []ModelResult {
	ctx, span := o.tracer.Start(ctx, "compare.fanout")
	defer span.End()
	span.SetAttributes(
		attribute.Int("model_count", len(o.models)),
		attribute.Int("prompt_length", len(prompt)),
	)

	results := make([]ModelResult, len(o.models))
	var wg sync.WaitGroup

	for i, m := range o.models {
		wg.Add(1)
		go func(i int, m registry.Model) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Compare] panic invoking model %s: %v", m.ID, r)
					results[i] = o.failedResult(m, prompt, fmt.Sprintf("%v", r))
				}
			}()
			results[i] = o.invoker.Invoke(ctx, m, prompt)
		}(i, m)
	}

	wg.Wait()
	return results
}

// failedResult synthesizes the result for an invocation that terminated
// outside the invoker's own error handling. Elapsed time was not tracked
// on that path, so ResponseTimeMs stays 0.
func (o *Orchestrator) failedResult(m registry.Model, prompt, reason string) ModelResult {
	if reason == "" {
		reason = "request failed"
	}
	promptTokens := tokens.Estimate(prompt)
	return ModelResult{
		ModelID:      m.ID,
		ModelName:    m.Name,
		Provider:     m.Provider,
		PromptTokens: promptTokens,
		TotalTokens:  promptTokens,
		Error:        reason,
	}
}
