// Package llm defines the narrow LMClient contract the pipeline depends on,
// plus the concrete providers that implement it.
package llm

import (
	"context"
	"encoding/json"
)

// CompletionRequest names a prompt and the JSON Schema the structured
// response must satisfy.
type CompletionRequest struct {
	SchemaName string
	Schema     json.RawMessage
	Prompt     string
	// Metadata carries context (e.g. "chapter_number") useful for logging,
	// tracing, and test stubs. Providers are never required to read it —
	// the prompt and schema are the whole of the contract.
	Metadata map[string]string
}

// Client is the single operation every LM provider must implement:
// complete(prompt, schema) -> structured output. Retries, timeouts, and
// authentication are the client's concern; the pipeline never retries.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (json.RawMessage, error)
	Name() string
}

// Schema names, matching the three shapes the pipeline's stages use.
const (
	SchemaIdentify   = "identify"
	SchemaBoundaries = "boundaries"
	SchemaVerify     = "verify"
)

// IdentifySchema is the stage-1 output schema: chapter count, a
// newline-delimited chapter list, and free-text analysis.
var IdentifySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"chapter_count": {"type": "integer", "minimum": 0},
		"chapter_list": {"type": "string"},
		"analysis": {"type": "string"}
	},
	"required": ["chapter_count", "chapter_list"]
}`)

// BoundariesSchema is the stage-2 output schema: a start/end regex pair.
var BoundariesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"start_pattern": {"type": "string"},
		"end_pattern": {"type": "string"},
		"pattern_explanation": {"type": "string"}
	},
	"required": ["start_pattern", "end_pattern"]
}`)

// VerifySchema is the stage-4 output schema: a correctness verdict.
var VerifySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"is_correct": {"type": "boolean"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"notes": {"type": "string"}
	},
	"required": ["is_correct", "confidence"]
}`)

// IdentifyResponse is the parsed form of the identify schema.
type IdentifyResponse struct {
	ChapterCount int    `json:"chapter_count"`
	ChapterList  string `json:"chapter_list"`
	Analysis     string `json:"analysis"`
}

// BoundariesResponse is the parsed form of the boundaries schema.
type BoundariesResponse struct {
	StartPattern       string `json:"start_pattern"`
	EndPattern         string `json:"end_pattern"`
	PatternExplanation string `json:"pattern_explanation"`
}

// VerifyResponse is the parsed form of the verify schema.
type VerifyResponse struct {
	IsCorrect  bool    `json:"is_correct"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}
