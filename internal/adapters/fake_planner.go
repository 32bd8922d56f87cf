package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FakePlanner is a deterministic keyword-routing stand-in for a real
// reasoning backend, used in tests and offline demos. It inspects the
// question and emits either a structured capability call or direct text.
type FakePlanner struct{}

// NewFakePlanner creates a planner that needs no external services.
func NewFakePlanner() *FakePlanner {
	return &FakePlanner{}
}

var (
	mathExpr       = regexp.MustCompile(`\d+.*[+\-*/%].*\d+`)
	percentOfExpr  = regexp.MustCompile(`\d+.*%.*of.*\d+`)
	celsiusToF     = regexp.MustCompile(`convert\s+(\d+(?:\.\d+)?)\s*degrees?\s*celsius\s+to\s+fahrenheit`)
	fahrenheitToC  = regexp.MustCompile(`convert\s+(\d+(?:\.\d+)?)\s*degrees?\s*fahrenheit\s+to\s+celsius`)
	translateExpr  = regexp.MustCompile(`translate\s+['"]([^'"]+)['"](?:\s+from\s+(\w+))?\s+to\s+(\w+)`)
	knowledgeLead  = regexp.MustCompile(`(?i)^(who is|what is|tell me about|information about)\s*`)
	cityAfterIn    = regexp.MustCompile(`\bin\s+([a-zA-Z\s]+?)(?:\?|$)`)
)

var knownCities = []string{"paris", "london", "dhaka", "new york", "tokyo", "sydney", "berlin"}

// Plan implements loom.Planner.
func (f *FakePlanner) Plan(_ context.Context, input string) (any, error) {
	p := strings.ToLower(strings.TrimSpace(input))

	switch {
	case f.isMath(p):
		return map[string]any{"tool": "calc", "args": map[string]any{"expr": strings.TrimSpace(input)}}, nil
	case f.isWeather(p):
		return map[string]any{"tool": "weather", "args": map[string]any{"city": f.extractCity(p)}}, nil
	case f.isKnowledge(p):
		return map[string]any{"tool": "kb", "args": map[string]any{"q": f.extractKnowledgeQuery(input)}}, nil
	case strings.Contains(p, "convert"):
		if args := f.extractConversion(p); args != nil {
			return map[string]any{"tool": "unit_converter", "args": args}, nil
		}
	case strings.Contains(p, "translate") || strings.Contains(p, "translation"):
		if args := f.extractTranslation(p); args != nil {
			return map[string]any{"tool": "translator", "args": args}, nil
		}
	}

	return fmt.Sprintf("I don't understand the query: %s", input), nil
}

func (f *FakePlanner) isMath(p string) bool {
	hasIndicator := strings.Contains(p, "what is") ||
		strings.Contains(p, "calculate") ||
		strings.Contains(p, "compute")
	hasExpr := mathExpr.MatchString(p) || percentOfExpr.MatchString(p)
	if !hasIndicator && !hasExpr {
		return false
	}
	// Weather-flavored questions route to the weather path even when they
	// carry numbers.
	return !strings.Contains(p, "temperature") && !strings.Contains(p, "weather") &&
		!strings.Contains(p, "convert") && !strings.Contains(p, "translate") &&
		(hasExpr || !f.isKnowledge(p))
}

func (f *FakePlanner) isWeather(p string) bool {
	for _, kw := range []string{"weather", "temperature", "forecast", "climate", "rain", "snow", "sunny", "cloudy"} {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}

func (f *FakePlanner) isKnowledge(p string) bool {
	for _, kw := range []string{"who is", "tell me about", "information about", "biography"} {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}

func (f *FakePlanner) extractCity(p string) string {
	for _, city := range knownCities {
		if strings.Contains(p, city) {
			return titleCase(city)
		}
	}
	if m := cityAfterIn.FindStringSubmatch(p); m != nil {
		return titleCase(strings.TrimSpace(m[1]))
	}
	return "Paris"
}

func (f *FakePlanner) extractKnowledgeQuery(input string) string {
	q := knowledgeLead.ReplaceAllString(strings.TrimSpace(input), "")
	return strings.TrimSpace(strings.TrimSuffix(q, "?"))
}

func (f *FakePlanner) extractConversion(p string) map[string]any {
	if m := celsiusToF.FindStringSubmatch(p); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return map[string]any{"value": v, "from_unit": "celsius", "to_unit": "fahrenheit"}
	}
	if m := fahrenheitToC.FindStringSubmatch(p); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return map[string]any{"value": v, "from_unit": "fahrenheit", "to_unit": "celsius"}
	}
	return nil
}

func (f *FakePlanner) extractTranslation(p string) map[string]any {
	m := translateExpr.FindStringSubmatch(p)
	if m == nil {
		return nil
	}
	from := m[2]
	if from == "" {
		from = "auto"
	}
	return map[string]any{"text": m[1], "from_lang": from, "to_lang": m[3]}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
