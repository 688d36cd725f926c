// Package gateway implements the single-model invoker: one timed HTTP call
// per model against the AI gateway's chat-completions endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vnmchuo/llm-compare/internal/compare"
	"github.com/vnmchuo/llm-compare/internal/pricing"
	"github.com/vnmchuo/llm-compare/internal/registry"
	"github.com/vnmchuo/llm-compare/internal/tokens"
)

// callTimeout bounds each individual model call. There is no request-level
// timeout on top of it; calls run concurrently.
const callTimeout = 30 * time.Second

const genericErrMsg = "unknown error occurred"

type Client struct {
	apiKey     string
	gatewayURL string
	httpClient *http.Client
	breakers   map[string]*gobreaker.CircuitBreaker
}

// New builds an invoker for the given registry. Each model gets its own
// circuit breaker so a gateway route that keeps failing fails fast instead
// of eating the full timeout on every comparison.
func New(gatewayURL, apiKey string, models []registry.Model) *Client {
	return &Client{
		apiKey:     apiKey,
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: callTimeout},
		breakers:   newBreakers(models),
	}
}

func newBreakers(models []registry.Model) map[string]*gobreaker.CircuitBreaker {
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(models))
	for _, m := range models {
		settings := gobreaker.Settings{
			Name:        m.ID,
			MaxRequests: 3,
			Interval:    5 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}
		breakers[m.ID] = gobreaker.NewCircuitBreaker(settings)
	}
	return breakers
}

type gatewayRequest struct {
	Model    string           `json:"model"`
	Messages []gatewayMessage `json:"messages"`
	Stream   bool             `json:"stream"`
}

type gatewayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gatewayResponse struct {
	Choices []gatewayChoice `json:"choices"`
	Usage   *gatewayUsage   `json:"usage"`
}

type gatewayChoice struct {
	Message gatewayMessage `json:"message"`
}

type gatewayUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type gatewayErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke performs one call for one model and always returns a ModelResult,
// never an error. Failures of any kind (breaker open, transport, timeout,
// non-2xx, malformed body) populate the result's Error field; elapsed time
// up to the failure is still recorded.
func (c *Client) Invoke(ctx context.Context, m registry.Model, prompt string) compare.ModelResult {
	start := time.Now()

	cb, ok := c.breakers[m.ID]
	if !ok {
		// Model outside the registry the client was built for.
		return c.failure(m, prompt, start, fmt.Sprintf("no route for model %s", m.ID))
	}

	out, err := cb.Execute(func() (interface{}, error) {
		return c.call(ctx, m, prompt)
	})
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = genericErrMsg
		}
		return c.failure(m, prompt, start, msg)
	}
	body := out.(*gatewayResponse)

	responseText := body.Choices[0].Message.Content
	promptTokens, completionTokens, totalTokens := normalizeUsage(body.Usage, prompt, responseText)

	return compare.ModelResult{
		ModelID:          m.ID,
		ModelName:        m.Name,
		Provider:         m.Provider,
		ResponseText:     responseText,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      totalTokens,
		ResponseTimeMs:   time.Since(start).Milliseconds(),
		EstimatedCost:    pricing.Cost(promptTokens, completionTokens, m),
	}
}

func (c *Client) call(ctx context.Context, m registry.Model, prompt string) (*gatewayResponse, error) {
	// A caller that disconnects early must not cancel a call already in
	// flight: keep the context's values (trace propagation) but drop its
	// cancellation, leaving the client's own timeout as the only bound.
	ctx = context.WithoutCancel(ctx)

	payload := gatewayRequest{
		Model: m.ID,
		Messages: []gatewayMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.gatewayURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		var errBody gatewayErrorBody
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error.Message != "" {
			return nil, fmt.Errorf("%s", errBody.Error.Message)
		}
		return nil, fmt.Errorf("ai gateway error (status %d)", resp.StatusCode)
	}

	var gwResp gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return nil, err
	}
	if len(gwResp.Choices) == 0 {
		return nil, fmt.Errorf("ai gateway returned no choices")
	}
	return &gwResp, nil
}

// normalizeUsage prefers the gateway-reported usage and falls back to the
// crude estimator per field when the gateway omits it.
func normalizeUsage(usage *gatewayUsage, prompt, responseText string) (promptTokens, completionTokens, totalTokens int) {
	if usage != nil && usage.PromptTokens > 0 {
		promptTokens = usage.PromptTokens
	} else {
		promptTokens = tokens.Estimate(prompt)
	}
	if usage != nil && usage.CompletionTokens > 0 {
		completionTokens = usage.CompletionTokens
	} else {
		completionTokens = tokens.Estimate(responseText)
	}
	if usage != nil && usage.TotalTokens > 0 {
		totalTokens = usage.TotalTokens
	} else {
		totalTokens = promptTokens + completionTokens
	}
	return promptTokens, completionTokens, totalTokens
}

func (c *Client) failure(m registry.Model, prompt string, start time.Time, msg string) compare.ModelResult {
	promptTokens := tokens.Estimate(prompt)
	return compare.ModelResult{
		ModelID:        m.ID,
		ModelName:      m.Name,
		Provider:       m.Provider,
		PromptTokens:   promptTokens,
		TotalTokens:    promptTokens,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Error:          msg,
	}
}
