package domain

import (
	"encoding/json"
	"testing"
)

func TestInstructions_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"string", `"Rename the variable"`, "Rename the variable"},
		{"list", `["Rename the variable", "Add a docstring"]`,
			"- Rename the variable\n- Add a docstring"},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var i Instructions
			if err := json.Unmarshal([]byte(tt.in), &i); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if i.String() != tt.want {
				t.Errorf("Instructions = %q, want %q", i.String(), tt.want)
			}
		})
	}

	var i Instructions
	if err := json.Unmarshal([]byte(`{"not": "valid"}`), &i); err == nil {
		t.Error("Unmarshal() accepted an object")
	}
}

func TestRecommendation_CommitMessage(t *testing.T) {
	rec := &Recommendation{File: "a.py", Summary: "fix: handle error"}
	if got := rec.CommitMessage(); got != "fix: handle error" {
		t.Errorf("CommitMessage() = %q", got)
	}

	empty := &Recommendation{File: "a.py"}
	if got := empty.CommitMessage(); got != "Apply review recommendations" {
		t.Errorf("CommitMessage() = %q, want fallback", got)
	}

	var nilRec *Recommendation
	if got := nilRec.CommitMessage(); got != "Apply review recommendations" {
		t.Errorf("nil CommitMessage() = %q, want fallback", got)
	}
}

func TestTurn_HasToolCalls(t *testing.T) {
	plain := Turn{Role: RoleAssistant, Content: "done"}
	if plain.HasToolCalls() {
		t.Error("text turn reports tool calls")
	}

	withCall := Turn{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "write_file"}}}
	if !withCall.HasToolCalls() {
		t.Error("tool-use turn reports no tool calls")
	}
}
