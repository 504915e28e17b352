package llm

import (
	"context"
	"testing"
)

func TestGetProvider_ModelRouting(t *testing.T) {
	factory := NewProviderFactory("test-openai-key", "test-gemini-key")
	ctx := context.Background()

	tests := []struct {
		model    string
		provider string
		want     string
	}{
		{model: "gpt-5-mini", want: "openai"},
		{model: "gpt-5", want: "openai"},
		{model: "gemini-2.5-flash", want: "gemini"},
		{model: "GEMINI-2.5-PRO", want: "gemini"},
		{model: "something-else", want: "openai"}, // unknown models default to OpenAI
		{model: "gpt-5-mini", provider: "gemini", want: "gemini"},
		{model: "gemini-2.5-flash", provider: "openai", want: "openai"},
	}

	for _, tt := range tests {
		p, err := factory.GetProvider(ctx, tt.model, tt.provider)
		if err != nil {
			t.Fatalf("GetProvider(%q, %q) returned error: %v", tt.model, tt.provider, err)
		}
		if p.Name() != tt.want {
			t.Errorf("GetProvider(%q, %q) = %q, want %q", tt.model, tt.provider, p.Name(), tt.want)
		}
	}
}

func TestGetProvider_MissingKeys(t *testing.T) {
	factory := NewProviderFactory("", "")
	ctx := context.Background()

	if _, err := factory.GetProvider(ctx, "gpt-5-mini", ""); err == nil {
		t.Error("expected error for OpenAI model without API key")
	}
	if _, err := factory.GetProvider(ctx, "gemini-2.5-flash", ""); err == nil {
		t.Error("expected error for Gemini model without API key")
	}
	if _, err := factory.GetProvider(ctx, "", "unsupported"); err == nil {
		t.Error("expected error for unknown provider name")
	}
}
