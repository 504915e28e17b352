package grading

import (
	"testing"

	grad "github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/lumen-studio/lumen-api/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T) *GradingAgent {
	agent, err := NewGradingAgent("test-key", "", "")
	require.NoError(t, err)
	return agent
}

func TestParseResponse_FullProposal(t *testing.T) {
	agent := newTestAgent(t)

	raw := `{
		"style": {"contrast": 12, "vibrance": null, "saturation": -5},
		"global": {"exposure": 0.3, "shadows": 20},
		"maskOps": [
			{"op": "add", "type": "sky", "name": "Sky",
			 "adjustments": {"local_exposure": -0.25, "local_dehaze": 0.2}},
			{"op": "update", "id": "m-1",
			 "adjustments": {"local_clarity": 0.1}}
		],
		"name": "Golden Hour",
		"prompt": null,
		"description": "  "
	}`

	pending, err := agent.parseResponse(&llm.GenerationResponse{RawOutput: raw})
	require.NoError(t, err)

	require.NotNil(t, pending.StylePatch)
	assert.Equal(t, 12.0, *pending.StylePatch.Contrast)
	assert.Nil(t, pending.StylePatch.Vibrance)

	require.NotNil(t, pending.GlobalPatch)
	assert.Equal(t, 0.3, *pending.GlobalPatch.Exposure)

	require.Len(t, pending.MaskOps, 2)
	assert.Equal(t, grad.OpAdd, pending.MaskOps[0].Op)
	assert.Equal(t, grad.MaskSky, pending.MaskOps[0].Type)
	assert.Equal(t, -0.25, *pending.MaskOps[0].Adjustments.Exposure)
	assert.Equal(t, "m-1", pending.MaskOps[1].ID)

	require.NotNil(t, pending.TextPatch.Name)
	assert.Equal(t, "Golden Hour", *pending.TextPatch.Name)
	// Null and whitespace-only text fields are dropped
	assert.Nil(t, pending.TextPatch.Prompt)
	assert.Nil(t, pending.TextPatch.Description)
}

func TestParseResponse_AllNullStyleIsDropped(t *testing.T) {
	agent := newTestAgent(t)

	raw := `{
		"style": {"contrast": null, "vibrance": null, "saturation": null},
		"global": {},
		"maskOps": [],
		"name": null, "prompt": null, "description": null
	}`

	pending, err := agent.parseResponse(&llm.GenerationResponse{RawOutput: raw})
	require.NoError(t, err)

	assert.Nil(t, pending.StylePatch)
	assert.Nil(t, pending.GlobalPatch)
	assert.Empty(t, pending.MaskOps)
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	agent := newTestAgent(t)

	_, err := agent.parseResponse(&llm.GenerationResponse{RawOutput: "not json"})
	assert.Error(t, err)

	_, err = agent.parseResponse(&llm.GenerationResponse{RawOutput: ""})
	assert.Error(t, err)

	_, err = agent.parseResponse(nil)
	assert.Error(t, err)
}

func TestSanitizeMaskOps(t *testing.T) {
	ops := []grad.MaskOverrideOp{
		{Op: " ADD "},
		{Op: "Remove_All"},
		{Op: "teleport"},
		{Op: ""},
	}

	out := sanitizeMaskOps(ops)
	require.Len(t, out, 3)
	assert.Equal(t, grad.OpAdd, out[0].Op)
	assert.Equal(t, grad.OpRemoveAll, out[1].Op)
	assert.Equal(t, grad.MaskOp(""), out[2].Op)
}

func TestMapAccuracyToReasoning(t *testing.T) {
	agent := newTestAgent(t)

	tests := []struct {
		accuracy Accuracy
		want     string
	}{
		{AccuracyFast, "minimal"},
		{AccuracyBalanced, "low"},
		{AccuracyDeep, "medium"},
		{"", "low"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, agent.mapAccuracyToReasoning(tt.accuracy))
	}
}

func TestBuildUserPrompt(t *testing.T) {
	agent := newTestAgent(t)

	exposure := 0.5
	req := &ProposalRequest{
		Current:     &grad.AdjustmentRecord{Exposure: &exposure},
		UserRequest: "make the sky moodier",
	}

	prompt, err := agent.buildUserPrompt(req)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"exposure": 0.5`)
	assert.Contains(t, prompt, "make the sky moodier")

	// Nil current settings are tolerated
	prompt, err = agent.buildUserPrompt(&ProposalRequest{UserRequest: "warmer"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "warmer")
}
