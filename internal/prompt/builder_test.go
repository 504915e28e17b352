package prompt

import (
	"strings"
	"testing"
)

func TestNewGradingPromptBuilder(t *testing.T) {
	builder := NewGradingPromptBuilder()
	if builder == nil {
		t.Fatal("NewGradingPromptBuilder() returned nil")
		return
	}
	if builder.loader == nil {
		t.Fatal("NewGradingPromptBuilder() created builder with nil loader")
	}
}

func TestBuildPrompt(t *testing.T) {
	builder := NewGradingPromptBuilder()
	prompt, err := builder.BuildPrompt()

	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}

	if prompt == "" {
		t.Fatal("BuildPrompt() returned empty string")
	}

	// All three sections should be present, in order
	sysIdx := strings.Index(prompt, "color-grading assistant")
	maskIdx := strings.Index(prompt, "Mask selection guidelines")
	formatIdx := strings.Index(prompt, "Output format")

	if sysIdx < 0 || maskIdx < 0 || formatIdx < 0 {
		t.Fatalf("BuildPrompt() missing sections: sys=%d mask=%d format=%d", sysIdx, maskIdx, formatIdx)
	}
	if !(sysIdx < maskIdx && maskIdx < formatIdx) {
		t.Errorf("BuildPrompt() sections out of order: sys=%d mask=%d format=%d", sysIdx, maskIdx, formatIdx)
	}
}
