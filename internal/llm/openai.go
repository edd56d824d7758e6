package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"
)

// maxStructuredRepairAttempts bounds how many times OpenAIClient re-prompts
// the model after a response fails schema validation.
const maxStructuredRepairAttempts = 2

// OpenAIClient implements Client against an OpenAI-compatible chat
// completions endpoint, requesting JSON-object output and validating the
// response against the request's JSON Schema before handing it back to the
// pipeline.
type OpenAIClient struct {
	name    string
	client  openai.Client
	model   string
	limiter *rate.Limiter
	retries uint
}

// OpenAIOptions configures an OpenAIClient.
type OpenAIOptions struct {
	Name         string
	APIKey       string
	BaseURL      string
	Model        string
	RateLimitQPS float64
	MaxRetries   uint
}

// NewOpenAIClient builds an OpenAIClient from the given options.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	qps := opts.RateLimitQPS
	if qps <= 0 {
		qps = 2.5
	}
	retries := opts.MaxRetries
	if retries == 0 {
		retries = 3
	}

	return &OpenAIClient{
		name:    opts.Name,
		client:  openai.NewClient(reqOpts...),
		model:   opts.Model,
		limiter: rate.NewLimiter(rate.Limit(qps), 1),
		retries: retries,
	}
}

// Name implements Client.
func (c *OpenAIClient) Name() string { return c.name }

// Complete implements Client: it submits the prompt with a JSON-object
// response_format, validates the result against req.Schema, and re-prompts
// once or twice on a
// validation failure before giving up.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai: rate limiter: %w", err)
	}

	schema, err := compileSchema(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("openai: invalid schema %q: %w", req.SchemaName, err)
	}

	prompt := req.Prompt
	var out json.RawMessage

	for attempt := 0; attempt <= maxStructuredRepairAttempts; attempt++ {
		raw, err := c.chatOnce(ctx, req.SchemaName, prompt)
		if err != nil {
			return nil, err
		}

		candidate := extractJSONCandidate(raw)
		if validateErr := validateStructuredJSON(schema, candidate); validateErr != nil {
			if attempt == maxStructuredRepairAttempts {
				return nil, fmt.Errorf("openai: structured output failed validation after %d attempts: %w", attempt+1, validateErr)
			}
			prompt = structuredRepairPrompt(req.Prompt, raw, validateErr)
			continue
		}
		out = candidate
		break
	}

	return out, nil
}

func (c *OpenAIClient) chatOnce(ctx context.Context, schemaName, prompt string) (string, error) {
	var content string
	err := retry.Do(
		func() error {
			resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model: c.model,
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.UserMessage(prompt),
				},
				ResponseFormat: adaptedResponseFormat(schemaName),
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("openai: empty choices")
			}
			content = resp.Choices[0].Message.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.DelayType(retry.BackOffDelay),
	)
	return content, err
}

// adaptedResponseFormat builds the response_format parameter that forces
// the model to emit a plain JSON object; schema-name-specific tightening
// (e.g. a per-schema json_schema response format) is a model-capability
// detail left to the caller's prompt, matching structuredRepairPrompt's
// re-prompt-on-mismatch fallback.
func adaptedResponseFormat(schemaName string) openai.ChatCompletionNewParamsResponseFormatUnion {
	_ = schemaName
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
	}
}

func compileSchema(raw json.RawMessage) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return c.Compile("schema.json")
}

func validateStructuredJSON(schema *jsonschema.Schema, raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return schema.Validate(v)
}

// extractJSONCandidate strips markdown code fences, if present, and returns
// the text from the first '{' through the last '}'; brace balance is not
// checked. Text without such a span is returned as is.
func extractJSONCandidate(raw string) json.RawMessage {
	text := stripCodeFences(raw)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return json.RawMessage(text)
	}
	return json.RawMessage(text[start : end+1])
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// structuredRepairPrompt asks the model to fix a response that failed
// schema validation, echoing the validator's complaint back to it.
func structuredRepairPrompt(original, badResponse string, validationErr error) string {
	var b strings.Builder
	b.WriteString(original)
	b.WriteString("\n\nYour previous response did not match the required schema:\n")
	b.WriteString(badResponse)
	b.WriteString("\n\nValidation error: ")
	b.WriteString(validationErr.Error())
	b.WriteString("\nRespond again with corrected JSON only.")
	return b.String()
}
