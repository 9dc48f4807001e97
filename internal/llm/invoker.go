// Package llm invokes local Ollama models with ordered fallback. The
// invoker walks a fixed candidate list and returns the first acceptable
// completion; when every candidate fails or is rejected it reports a
// fixed failure response rather than an error.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// FailureResponse is returned when every candidate model is exhausted.
const FailureResponse = "SUPA Chat encountered an error. Please try again or contact HR."

// minAcceptableLen is the shortest completion treated as a real answer.
// Anything shorter is a refusal or a stub and triggers fallback.
const minAcceptableLen = 20

// State is the invoker's position in the fallback walk.
type State string

const (
	StateTrying    State = "trying"
	StateSucceeded State = "succeeded"
	StateExhausted State = "exhausted"
)

// Attempt records one candidate try for observability.
type Attempt struct {
	Model    string
	Err      error
	Rejected bool
}

// Result is the outcome of one Generate call. Model is "none" when the
// walk exhausted every candidate.
type Result struct {
	Text     string
	Model    string
	State    State
	Attempts []Attempt
}

// Invoker calls Ollama's generate API with a fixed candidate order and a
// per-call timeout.
type Invoker struct {
	endpoint string
	models   []string
	timeout  time.Duration
	client   *http.Client
}

// NewInvoker creates an invoker. models are tried in the given order.
func NewInvoker(endpoint string, models []string, timeout time.Duration) *Invoker {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &Invoker{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		models:   models,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions pin sampling so identical prompts produce stable text.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate walks the candidate models in order and returns the first
// completion of acceptable length. Never returns an error: exhaustion
// yields the fixed failure response under model "none".
func (inv *Invoker) Generate(ctx context.Context, prompt string) *Result {
	result := &Result{State: StateTrying}

	for _, model := range inv.models {
		text, err := inv.callModel(ctx, model, prompt)
		if err != nil {
			log.Warn().Str("model", model).Err(err).Msg("Model call failed, trying next")
			result.Attempts = append(result.Attempts, Attempt{Model: model, Err: err})
			continue
		}
		if len(text) < minAcceptableLen {
			log.Warn().Str("model", model).Int("len", len(text)).Msg("Response too short, trying next")
			result.Attempts = append(result.Attempts, Attempt{Model: model, Rejected: true})
			continue
		}

		result.Attempts = append(result.Attempts, Attempt{Model: model})
		result.Text = text
		result.Model = model
		result.State = StateSucceeded
		return result
	}

	result.Text = FailureResponse
	result.Model = "none"
	result.State = StateExhausted
	return result
}

// callModel performs one generate call under the per-call timeout.
func (inv *Invoker) callModel(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	body, _ := json.Marshal(generateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: 0, TopP: 1},
	})

	url := inv.endpoint + "/api/generate"
	httpReq, err := http.NewRequestWithContext(callCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := inv.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return "", fmt.Errorf("ollama: status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	return strings.TrimSpace(genResp.Response), nil
}
