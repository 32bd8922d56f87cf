package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	loom "github.com/threadworks/loom"
)

func TestSetupCapabilities_RegistersAll(t *testing.T) {
	reg := loom.NewRegistry()
	if err := SetupCapabilities(reg, "data/kb.json"); err != nil {
		t.Fatalf("SetupCapabilities failed: %v", err)
	}

	for _, name := range []string{"calc", "kb", "weather", "unit_converter", "translator"} {
		if !reg.Has(name) {
			t.Errorf("expected capability %q to be registered", name)
		}
	}
}

func TestCalculator(t *testing.T) {
	calc := NewCalculator()

	got, err := calc.Execute(context.Background(), map[string]any{"expr": "What is 2 + 2?"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != 4.0 {
		t.Errorf("expected 4, got %v", got)
	}

	if _, err := calc.Execute(context.Background(), map[string]any{"expr": "1 / 0"}); err == nil {
		t.Error("expected division by zero error")
	}
	if _, err := calc.Execute(context.Background(), map[string]any{}); err == nil {
		t.Error("expected error for missing expr argument")
	}
}

func TestKnowledgeBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	content := `{"entries": [{"name": "Ada Lovelace", "summary": "Wrote the first published algorithm."}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write kb: %v", err)
	}

	kb := NewKnowledgeBase(path)

	got, err := kb.Execute(context.Background(), map[string]any{"q": "ada lovelace"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "Wrote the first published algorithm." {
		t.Errorf("unexpected summary: %v", got)
	}

	got, err = kb.Execute(context.Background(), map[string]any{"q": "nobody"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "No entry found." {
		t.Errorf("expected not-found message, got %v", got)
	}
}

func TestKnowledgeBase_MissingFileReportsAsText(t *testing.T) {
	kb := NewKnowledgeBase(filepath.Join(t.TempDir(), "missing.json"))

	got, err := kb.Execute(context.Background(), map[string]any{"q": "anything"})
	if err != nil {
		t.Fatalf("Execute should not fail: %v", err)
	}
	text, ok := got.(string)
	if !ok || text == "" {
		t.Fatalf("expected error text, got %v", got)
	}
}

func TestWeather(t *testing.T) {
	weather := NewWeather()

	got, err := weather.Execute(context.Background(), map[string]any{"city": "London"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != 17.0 {
		t.Errorf("expected 17 for London, got %v", got)
	}

	got, err = weather.Execute(context.Background(), map[string]any{"city": "Atlantis"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "20" {
		t.Errorf("expected default temperature for unknown city, got %v", got)
	}
}

func TestUnitConverter(t *testing.T) {
	conv := NewUnitConverter()

	got, err := conv.Execute(context.Background(), map[string]any{
		"value": 100.0, "from_unit": "celsius", "to_unit": "fahrenheit",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != 212.0 {
		t.Errorf("expected 212, got %v", got)
	}

	got, err = conv.Execute(context.Background(), map[string]any{
		"value": "32", "from_unit": "fahrenheit", "to_unit": "celsius",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != 0.0 {
		t.Errorf("expected 0, got %v", got)
	}

	if _, err := conv.Execute(context.Background(), map[string]any{
		"value": 1.0, "from_unit": "meters", "to_unit": "feet",
	}); err == nil {
		t.Error("expected error for unsupported conversion")
	}
}

func TestTranslator(t *testing.T) {
	tr := NewTranslator()

	got, err := tr.Execute(context.Background(), map[string]any{"text": "hola", "to_lang": "english"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected hello, got %v", got)
	}

	got, err = tr.Execute(context.Background(), map[string]any{
		"text": "hello", "from_lang": "english", "to_lang": "french",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "bonjour" {
		t.Errorf("expected bonjour, got %v", got)
	}

	got, err = tr.Execute(context.Background(), map[string]any{
		"text": "xyzzy", "from_lang": "klingon", "to_lang": "english",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "Translated from klingon to english: xyzzy" {
		t.Errorf("unexpected passthrough: %v", got)
	}
}
