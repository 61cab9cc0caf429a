// Package ai is the boundary to the locally hosted text-generation service (Ollama).
//
// [Gateway.Complete] returns the model output or a typed failure.
// [Gateway.Generate] keeps the flattened contract the agents rely on: it always returns a string,
// and failures come back as "AI request failed with status N" or "AI Error: ..." markers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/shared"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama2"

	generatePath = "/api/generate"
)

// Request is the JSON body of one generate call.
type Request struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Response is the subset of the generate reply the gateway reads.
type Response struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// StatusError reports a non-200 reply from the generation service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("AI request failed with status %d", e.Code)
}

// Gateway sends prompts to the generation service.
type Gateway struct {
	host       string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

// Options configures a [Gateway]. Zero values fall back to defaults.
type Options struct {
	Host       string
	Model      string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewGateway creates a gateway for the given host and default model.
func NewGateway(opts Options) *Gateway {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Gateway{
		host:       strings.TrimRight(opts.Host, "/"),
		model:      opts.Model,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// Host returns the configured endpoint.
func (g *Gateway) Host() string { return g.host }

// Model returns the default model identifier.
func (g *Gateway) Model() string { return g.model }

// Generate sends prompt to the model (the default one when model is empty) and returns its text.
//
// Failures are logged and returned as text, so callers cannot tell them from a model answer.
// Use [Gateway.Complete] when that distinction matters.
func (g *Gateway) Generate(ctx context.Context, prompt, model string) string {
	text, err := g.Complete(ctx, prompt, model)
	if err == nil {
		return text
	}

	var statusErr *StatusError
	msg := fmt.Sprintf("AI Error: %v", err)
	if errors.As(err, &statusErr) {
		msg = statusErr.Error()
	}

	g.logger.Error(msg)
	return msg
}

// Complete performs one synchronous generate request.
//
// A non-200 reply yields a [*StatusError]; transport and decoding problems are wrapped with
// [shared.ErrServiceUnavailable] and [shared.ErrMalformedResponse] respectively.
func (g *Gateway) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = g.model
	}

	payload, err := json.Marshal(Request{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.host+generatePath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	requestID := shared.GenerateID()
	g.logger.Debug("sending prompt", "request_id", requestID, "model", model, "prompt_len", len(prompt))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	if out.Response == nil {
		return "", fmt.Errorf("%w: missing response field", shared.ErrMalformedResponse)
	}

	g.logger.Debug("received completion", "request_id", requestID, "response_len", len(*out.Response))
	return *out.Response, nil
}
