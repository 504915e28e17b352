package prompt

import (
	"strings"
	"testing"
)

func TestNewPromptLoader(t *testing.T) {
	loader := NewPromptLoader()
	if loader == nil {
		t.Fatal("NewPromptLoader() returned nil")
	}
}

func TestGetSystemPrompt(t *testing.T) {
	loader := NewPromptLoader()
	content, err := loader.GetSystemPrompt()

	if err != nil {
		t.Fatalf("GetSystemPrompt() returned error: %v", err)
	}

	if content == "" {
		t.Error("GetSystemPrompt() returned empty string")
	}

	// Check for expected content
	if !strings.Contains(content, "color-grading assistant") {
		t.Error("GetSystemPrompt() does not contain expected content")
	}

	// Ensure no excessive whitespace
	if strings.HasPrefix(content, "\n\n\n") {
		t.Error("GetSystemPrompt() has excessive leading newlines")
	}
}

func TestGetMaskGuidelines(t *testing.T) {
	loader := NewPromptLoader()
	content, err := loader.GetMaskGuidelines()

	if err != nil {
		t.Fatalf("GetMaskGuidelines() returned error: %v", err)
	}

	if content == "" {
		t.Error("GetMaskGuidelines() returned empty string")
	}

	// Should document the gradient mask types
	if !strings.Contains(content, "linear_gradient") || !strings.Contains(content, "radial_gradient") {
		t.Error("GetMaskGuidelines() does not contain expected mask types")
	}
}

func TestGetOutputFormatInstructions(t *testing.T) {
	loader := NewPromptLoader()
	content, err := loader.GetOutputFormatInstructions()

	if err != nil {
		t.Fatalf("GetOutputFormatInstructions() returned error: %v", err)
	}

	if content == "" {
		t.Error("GetOutputFormatInstructions() returned empty string")
	}

	// Check for expected format content
	if !strings.Contains(content, "JSON") || !strings.Contains(content, "maskOps") {
		t.Error("GetOutputFormatInstructions() does not contain expected content")
	}
}

func TestAllLoadersReturnNonEmptyContent(t *testing.T) {
	loader := NewPromptLoader()

	tests := []struct {
		name string
		fn   func() (string, error)
	}{
		{"SystemPrompt", loader.GetSystemPrompt},
		{"MaskGuidelines", loader.GetMaskGuidelines},
		{"OutputFormatInstructions", loader.GetOutputFormatInstructions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := tt.fn()
			if err != nil {
				t.Errorf("%s returned error: %v", tt.name, err)
			}
			if content == "" {
				t.Errorf("%s returned empty string", tt.name)
			}
			if len(content) < 10 {
				t.Errorf("%s returned suspiciously short content: %d characters", tt.name, len(content))
			}
		})
	}
}
