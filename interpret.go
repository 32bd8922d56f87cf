package loom

import (
	"encoding/json"
	"regexp"
	"strings"
)

// literalInvocation matches the fallback plan form TOOL:<name> <ARG>="<value>".
var literalInvocation = regexp.MustCompile(`TOOL:(\w+)\s+(\w+)="([^"]*)"`)

var (
	trailingCommaBrace   = regexp.MustCompile(`,\s*}`)
	trailingCommaBracket = regexp.MustCompile(`,\s*]`)
)

// Interpret turns a raw plan candidate into either a capability invocation
// or a final answer. It never fails: anything that cannot be read as an
// invocation is a direct answer, not an orchestration failure.
func Interpret(candidate any) PlanResult {
	if inv, ok := invocationFromValue(candidate); ok {
		return InvocationResult(inv)
	}

	text, ok := candidate.(string)
	if !ok {
		return FinalAnswer(candidate)
	}

	if parsed, ok := repairJSON(text); ok {
		if inv, ok := invocationFromValue(parsed); ok {
			return InvocationResult(inv)
		}
	}

	if m := literalInvocation.FindStringSubmatch(text); m != nil {
		return InvocationResult(Invocation{
			Capability: m[1],
			Args:       map[string]any{strings.ToLower(m[2]): m[3]},
		})
	}

	return FinalAnswer(text)
}

// invocationFromValue builds an Invocation from a structured candidate
// containing a capability-name field. The argument map defaults to empty.
func invocationFromValue(candidate any) (Invocation, bool) {
	m, ok := candidate.(map[string]any)
	if !ok {
		return Invocation{}, false
	}

	name, ok := m["tool"].(string)
	if !ok || name == "" {
		return Invocation{}, false
	}

	args := map[string]any{}
	if raw, ok := m["args"].(map[string]any); ok {
		args = raw
	}
	return Invocation{Capability: name, Args: args}, true
}

// repairJSON parses text as JSON, applying a small set of syntactic repairs
// in order when the raw parse fails: append a closing brace, append a
// closing quote, append a closing bracket, strip a trailing comma before a
// closing brace or bracket. The first repair that parses wins.
func repairJSON(text string) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	if v, ok := tryParse(text); ok {
		return v, true
	}

	repairs := []func(string) string{
		func(s string) string { return s + "}" },
		func(s string) string { return s + `"` },
		func(s string) string { return s + "]" },
		func(s string) string { return trailingCommaBrace.ReplaceAllString(s, "}") },
		func(s string) string { return trailingCommaBracket.ReplaceAllString(s, "]") },
	}
	for _, repair := range repairs {
		if v, ok := tryParse(repair(text)); ok {
			return v, true
		}
	}
	return nil, false
}

func tryParse(text string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	// Bare JSON scalars ("42", "true") are not plans; only structured
	// values can carry a capability call.
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	default:
		return nil, false
	}
}
