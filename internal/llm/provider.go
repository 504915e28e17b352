// Package llm abstracts the model providers behind a single structured-
// output interface. The grading proposer depends only on Provider, never
// on a concrete SDK.
package llm

import (
	"context"
)

// Provider defines the interface for LLM providers
// All providers MUST support structured output (JSON Schema) for reliable response parsing
type Provider interface {
	// Generate invokes the model with a strict output schema and returns
	// the raw JSON text for the caller to parse.
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for a proposer call
type GenerationRequest struct {
	Model         string
	InputArray    []map[string]any
	ReasoningMode string
	SystemPrompt  string
	// Structured output schema - REQUIRED for reliable JSON parsing
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// TokenUsage is the provider-agnostic usage summary.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	// RawOutput is the JSON text conforming to the request's OutputSchema.
	RawOutput string     `json:"-"`
	Usage     TokenUsage `json:"usage"`
}
