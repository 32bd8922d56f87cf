package loom

import (
	"testing"
)

func TestInterpret_StructuredMap(t *testing.T) {
	plan := Interpret(map[string]any{
		"tool": "calc",
		"args": map[string]any{"expr": "2 + 2"},
	})

	if !plan.IsInvocation() {
		t.Fatal("expected an invocation")
	}
	if plan.Invocation.Capability != "calc" {
		t.Errorf("expected calc, got %q", plan.Invocation.Capability)
	}
	if plan.Invocation.Args["expr"] != "2 + 2" {
		t.Errorf("unexpected args: %v", plan.Invocation.Args)
	}
}

func TestInterpret_StructuredMapWithoutArgs(t *testing.T) {
	plan := Interpret(map[string]any{"tool": "weather"})

	if !plan.IsInvocation() {
		t.Fatal("expected an invocation")
	}
	if plan.Invocation.Args == nil || len(plan.Invocation.Args) != 0 {
		t.Errorf("expected empty args map, got %v", plan.Invocation.Args)
	}
}

func TestInterpret_JSONString(t *testing.T) {
	plan := Interpret(`{"tool": "kb", "args": {"q": "Ada Lovelace"}}`)

	if !plan.IsInvocation() {
		t.Fatal("expected an invocation")
	}
	if plan.Invocation.Capability != "kb" {
		t.Errorf("expected kb, got %q", plan.Invocation.Capability)
	}
}

func TestInterpret_RepairsTruncatedJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing brace", `{"tool": "calc", "args": {"expr": "1+1"}`},
		{"missing quote and braces", `{"tool": "calc`},
		{"trailing comma", `{"tool": "calc", "args": {"expr": "1+1"},}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := Interpret(tc.raw)
			if tc.name == "missing quote and braces" {
				// The quote repair alone cannot close the object; this one
				// falls through to a direct answer.
				if plan.IsInvocation() {
					t.Fatal("expected fallback to direct answer")
				}
				return
			}
			if !plan.IsInvocation() {
				t.Fatalf("expected repaired invocation for %q", tc.raw)
			}
			if plan.Invocation.Capability != "calc" {
				t.Errorf("expected calc, got %q", plan.Invocation.Capability)
			}
		})
	}
}

func TestInterpret_LiteralPattern(t *testing.T) {
	plan := Interpret(`TOOL:weather CITY="Paris"`)

	if !plan.IsInvocation() {
		t.Fatal("expected an invocation")
	}
	if plan.Invocation.Capability != "weather" {
		t.Errorf("expected weather, got %q", plan.Invocation.Capability)
	}
	if plan.Invocation.Args["city"] != "Paris" {
		t.Errorf("expected lowercased arg name with original value, got %v", plan.Invocation.Args)
	}
}

func TestInterpret_PlainTextIsAnswer(t *testing.T) {
	plan := Interpret("The capital of France is Paris.")

	if plan.IsInvocation() {
		t.Fatal("expected a direct answer")
	}
	if plan.Answer != "The capital of France is Paris." {
		t.Errorf("expected original text preserved, got %v", plan.Answer)
	}
}

func TestInterpret_NonStringNonMapIsAnswer(t *testing.T) {
	plan := Interpret(42.0)

	if plan.IsInvocation() {
		t.Fatal("expected a direct answer")
	}
	if plan.Answer != 42.0 {
		t.Errorf("expected value preserved, got %v", plan.Answer)
	}
}

func TestInterpret_MapWithoutToolIsAnswer(t *testing.T) {
	candidate := map[string]any{"answer": "Paris"}
	plan := Interpret(candidate)

	if plan.IsInvocation() {
		t.Fatal("expected a direct answer")
	}
}

func TestInterpret_BareJSONScalarStaysText(t *testing.T) {
	plan := Interpret("42")

	if plan.IsInvocation() {
		t.Fatal("expected a direct answer")
	}
	if plan.Answer != "42" {
		t.Errorf("expected original text, got %v", plan.Answer)
	}
}
