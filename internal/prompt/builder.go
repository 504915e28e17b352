package prompt

import (
	"fmt"
	"strings"
)

// GradingPromptBuilder builds the system prompt for the grading proposer
type GradingPromptBuilder struct {
	loader *Loader
}

// NewGradingPromptBuilder creates a new grading prompt builder
func NewGradingPromptBuilder() *GradingPromptBuilder {
	return &GradingPromptBuilder{loader: NewPromptLoader()}
}

// BuildPrompt builds the complete system prompt for the proposer
func (b *GradingPromptBuilder) BuildPrompt() (string, error) {
	system, err := b.loader.GetSystemPrompt()
	if err != nil {
		return "", fmt.Errorf("failed to load system prompt: %w", err)
	}

	guidelines, err := b.loader.GetMaskGuidelines()
	if err != nil {
		return "", fmt.Errorf("failed to load mask guidelines: %w", err)
	}

	format, err := b.loader.GetOutputFormatInstructions()
	if err != nil {
		return "", fmt.Errorf("failed to load output format instructions: %w", err)
	}

	sections := []string{system, guidelines, format}
	return strings.Join(sections, "\n\n"), nil
}
