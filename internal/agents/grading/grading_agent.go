package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	grad "github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/lumen-studio/lumen-api/internal/llm"
	"github.com/lumen-studio/lumen-api/internal/prompt"
)

// Accuracy controls depth of the proposal pass (maps to LLM reasoning)
type Accuracy string

const (
	AccuracyFast     Accuracy = "fast"     // Minimal reasoning - conversational refinements
	AccuracyBalanced Accuracy = "balanced" // Low reasoning - good tradeoff
	AccuracyDeep     Accuracy = "deep"     // Medium reasoning - full restyles
)

const defaultProposerModel = "gpt-5-mini"

// ProposalRequest carries the recipe state and the user's ask
type ProposalRequest struct {
	// Current effective settings, serialized into the prompt so the model
	// can reference existing masks by id
	Current *grad.AdjustmentRecord `json:"current"`

	UserRequest string   `json:"user_request"`
	Accuracy    Accuracy `json:"accuracy,omitempty"`
	Model       string   `json:"model,omitempty"`
}

// ProposalResult is the parsed proposal bundle plus generation metadata
type ProposalResult struct {
	Pending grad.PendingModification
	Model   string
	Usage   llm.TokenUsage
}

// proposalPayload mirrors the structured-output schema. Text fields ride at
// the top level of the payload, not nested under "text".
type proposalPayload struct {
	Style       *grad.StyleOverride    `json:"style"`
	Global      *grad.AdjustmentRecord `json:"global"`
	MaskOps     []grad.MaskOverrideOp  `json:"maskOps"`
	Name        *string                `json:"name"`
	Prompt      *string                `json:"prompt"`
	Description *string                `json:"description"`
}

// GradingAgent turns natural-language grading requests into proposal bundles
type GradingAgent struct {
	factory      *llm.ProviderFactory
	systemPrompt string
	defaultModel string
}

// NewGradingAgent creates a new grading agent
func NewGradingAgent(openaiAPIKey, geminiAPIKey, model string) (*GradingAgent, error) {
	builder := prompt.NewGradingPromptBuilder()
	systemPrompt, err := builder.BuildPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to build system prompt: %w", err)
	}

	if model == "" {
		model = defaultProposerModel
	}

	return &GradingAgent{
		factory:      llm.NewProviderFactory(openaiAPIKey, geminiAPIKey),
		systemPrompt: systemPrompt,
		defaultModel: model,
	}, nil
}

// mapAccuracyToReasoning converts accuracy level to LLM reasoning mode
func (a *GradingAgent) mapAccuracyToReasoning(accuracy Accuracy) string {
	switch accuracy {
	case AccuracyFast:
		return "minimal"
	case AccuracyBalanced:
		return "low"
	case AccuracyDeep:
		return "medium"
	default:
		return "low"
	}
}

// Propose asks the model for a grading proposal against the current settings
func (a *GradingAgent) Propose(ctx context.Context, request *ProposalRequest) (*ProposalResult, error) {
	startTime := time.Now()
	log.Printf("🎨 GRADING PROPOSAL STARTED: %q", truncateRequest(request.UserRequest))

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "grading.propose")
	defer transaction.Finish()

	model := request.Model
	if model == "" {
		model = a.defaultModel
	}
	transaction.SetTag("model", model)
	transaction.SetTag("accuracy", string(request.Accuracy))

	provider, err := a.factory.GetProvider(ctx, model, "")
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("failed to resolve provider: %w", err)
	}

	userPrompt, err := a.buildUserPrompt(request)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	reasoningMode := a.mapAccuracyToReasoning(request.Accuracy)
	log.Printf("🎯 Accuracy: %s → Reasoning: %s", request.Accuracy, reasoningMode)

	llmRequest := &llm.GenerationRequest{
		Model:         model,
		SystemPrompt:  a.systemPrompt,
		ReasoningMode: reasoningMode,
		InputArray: []map[string]any{
			{
				"role":    "user",
				"content": userPrompt,
			},
		},
		OutputSchema: &llm.OutputSchema{
			Name:        "grading_proposal",
			Description: "Proposed style, global and mask adjustments for the recipe",
			Schema:      llm.GetGradingProposalSchema(),
		},
	}

	log.Printf("🚀 Calling LLM for grading proposal...")
	resp, err := provider.Generate(ctx, llmRequest)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	pending, err := a.parseResponse(resp)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	duration := time.Since(startTime)
	log.Printf("✅ GRADING PROPOSAL COMPLETE: %d mask ops in %v", len(pending.MaskOps), duration)

	transaction.SetTag("success", "true")
	transaction.SetTag("mask_op_count", fmt.Sprintf("%d", len(pending.MaskOps)))

	return &ProposalResult{
		Pending: *pending,
		Model:   model,
		Usage:   resp.Usage,
	}, nil
}

func (a *GradingAgent) buildUserPrompt(request *ProposalRequest) (string, error) {
	current := request.Current
	if current == nil {
		current = &grad.AdjustmentRecord{}
	}

	currentJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize current settings: %w", err)
	}

	return fmt.Sprintf(`## Current Settings
%s

## Request
%s

Propose the smallest set of changes that achieves the requested look.`,
		string(currentJSON), request.UserRequest), nil
}

func (a *GradingAgent) parseResponse(resp *llm.GenerationResponse) (*grad.PendingModification, error) {
	if resp == nil || resp.RawOutput == "" {
		return nil, fmt.Errorf("empty response from LLM")
	}

	var payload proposalPayload
	if err := json.Unmarshal([]byte(resp.RawOutput), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	pending := &grad.PendingModification{
		StylePatch:  dropEmptyStyle(payload.Style),
		GlobalPatch: dropEmptyGlobal(payload.Global),
		MaskOps:     sanitizeMaskOps(payload.MaskOps),
		TextPatch: grad.TextPatch{
			Name:        dropEmptyString(payload.Name),
			Prompt:      dropEmptyString(payload.Prompt),
			Description: dropEmptyString(payload.Description),
		},
	}

	return pending, nil
}

// dropEmptyStyle discards an all-null style object the schema forces the
// model to emit
func dropEmptyStyle(s *grad.StyleOverride) *grad.StyleOverride {
	if s == nil {
		return nil
	}
	if s.Contrast == nil && s.Vibrance == nil && s.Saturation == nil {
		return nil
	}
	return s
}

func dropEmptyGlobal(g *grad.AdjustmentRecord) *grad.AdjustmentRecord {
	if g == nil {
		return nil
	}
	raw, err := json.Marshal(g)
	if err != nil || string(raw) == "{}" {
		return nil
	}
	return g
}

func dropEmptyString(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// sanitizeMaskOps drops ops with an unknown verb and normalizes casing.
// Value clamping happens when the bundle enters the edit session.
func sanitizeMaskOps(ops []grad.MaskOverrideOp) []grad.MaskOverrideOp {
	if len(ops) == 0 {
		return nil
	}

	valid := map[grad.MaskOp]bool{
		grad.OpAdd:       true,
		grad.OpUpdate:    true,
		grad.OpRemove:    true,
		grad.OpRemoveAll: true,
		grad.OpClear:     true,
		"":               true, // empty op defaults to upsert downstream
	}

	out := make([]grad.MaskOverrideOp, 0, len(ops))
	for _, op := range ops {
		op.Op = grad.MaskOp(strings.ToLower(strings.TrimSpace(string(op.Op))))
		if !valid[op.Op] {
			log.Printf("⚠️  Dropping mask op with unknown verb: %q", op.Op)
			continue
		}
		out = append(out, op)
	}
	return out
}

func truncateRequest(s string) string {
	const maxLen = 120
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
