package llm

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestGetGradingProposalSchema_TopLevel(t *testing.T) {
	schema := GetGradingProposalSchema()

	if schema["type"] != "object" {
		t.Fatalf("top-level type = %v, want object", schema["type"])
	}
	if schema["additionalProperties"] != false {
		t.Error("top-level additionalProperties must be false for strict mode")
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatal("top-level properties missing")
	}
	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatal("top-level required missing")
	}

	// Strict structured outputs require every property to be listed in
	// required (nullability handles optionality)
	if len(required) != len(props) {
		t.Errorf("required has %d entries, properties has %d; they must match", len(required), len(props))
	}
	for _, key := range []string{"style", "global", "maskOps", "name", "prompt", "description"} {
		if _, ok := props[key]; !ok {
			t.Errorf("missing top-level property %q", key)
		}
	}
}

func TestGetGradingProposalSchema_MaskOpEnum(t *testing.T) {
	schema := GetGradingProposalSchema()

	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("schema is not JSON-serializable: %v", err)
	}

	for _, verb := range []string{"add", "update", "remove", "remove_all", "clear"} {
		if !jsonContains(raw, verb) {
			t.Errorf("op enum missing verb %q", verb)
		}
	}

	// Spot-check mask types survive into the serialized schema
	for _, maskType := range []string{"sky", "subject", "linear_gradient", "radial_gradient", "face_skin"} {
		if !jsonContains(raw, maskType) {
			t.Errorf("mask type enum missing %q", maskType)
		}
	}
}

func TestMaskTypeEnum_Complete(t *testing.T) {
	enum := maskTypeEnum()
	if len(enum) == 0 {
		t.Fatal("mask type enum is empty")
	}
	seen := make(map[string]bool, len(enum))
	for _, v := range enum {
		if seen[v] {
			t.Errorf("duplicate mask type %q", v)
		}
		seen[v] = true
	}
}

func jsonContains(raw []byte, needle string) bool {
	quoted, _ := json.Marshal(needle)
	return bytes.Contains(raw, quoted)
}
