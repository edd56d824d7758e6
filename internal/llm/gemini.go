package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiClient implements Client against Google's genai SDK. It is
// registered alongside OpenAIClient to exercise the registry's
// multi-provider contract with a second real transport.
type GeminiClient struct {
	name    string
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// GeminiOptions configures a GeminiClient.
type GeminiOptions struct {
	Name         string
	APIKey       string
	Model        string
	RateLimitQPS float64
}

// NewGeminiClient builds a GeminiClient from the given options.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	qps := opts.RateLimitQPS
	if qps <= 0 {
		qps = 2.5
	}

	return &GeminiClient{
		name:    opts.Name,
		client:  c,
		model:   opts.Model,
		limiter: rate.NewLimiter(rate.Limit(qps), 1),
	}, nil
}

// Name implements Client.
func (c *GeminiClient) Name() string { return c.name }

// Complete implements Client by asking genai to generate content
// constrained to application/json, then validating it the same way
// OpenAIClient does.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gemini: rate limiter: %w", err)
	}

	schema, err := compileSchema(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("gemini: invalid schema %q: %w", req.SchemaName, err)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	candidate := extractJSONCandidate(resp.Text())
	if err := validateStructuredJSON(schema, candidate); err != nil {
		return nil, fmt.Errorf("gemini: structured output failed validation: %w", err)
	}
	return candidate, nil
}
