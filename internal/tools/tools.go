// Package tools ships the demo capabilities: a calculator, a knowledge base
// lookup, canned weather, a unit converter, and a phrasebook translator.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	loom "github.com/threadworks/loom"
	"github.com/threadworks/loom/internal/adapters"
)

// SetupCapabilities registers the demo capabilities on the registry.
func SetupCapabilities(registry *loom.Registry, kbPath string) error {
	capabilities := []loom.Capability{
		NewCalculator(),
		NewKnowledgeBase(kbPath),
		NewWeather(),
		NewUnitConverter(),
		NewTranslator(),
	}
	for _, c := range capabilities {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("register %s: %w", c.Name(), err)
		}
	}
	return nil
}

// NewCalculator evaluates arithmetic expressions, including the "X% of Y"
// form.
func NewCalculator() loom.Capability {
	return adapters.NewGoCapability("calc",
		func(_ context.Context, args map[string]any) (any, error) {
			expr, err := stringArg(args, "expr")
			if err != nil {
				return nil, err
			}
			return EvalExpression(expr)
		},
		adapters.WithDescription("Evaluate mathematical expressions including percentages"),
		adapters.WithParameters(map[string]string{
			"expr": "Mathematical expression to evaluate",
		}),
		adapters.WithReturns("The numeric result"),
		adapters.WithExamples([]string{
			`calc expr="2 + 2"`,
			`calc expr="12% of 50"`,
		}),
	)
}

type kbEntry struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

type kbFile struct {
	Entries []kbEntry `json:"entries"`
}

// NewKnowledgeBase looks up entries in a JSON knowledge base file. Lookup
// failures are reported as text, matching the capability's best-effort role.
func NewKnowledgeBase(path string) loom.Capability {
	return adapters.NewGoCapability("kb",
		func(_ context.Context, args map[string]any) (any, error) {
			q, err := stringArg(args, "q")
			if err != nil {
				return nil, err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Sprintf("KB error: %v", err), nil
			}
			var kb kbFile
			if err := json.Unmarshal(data, &kb); err != nil {
				return fmt.Sprintf("KB error: %v", err), nil
			}

			query := strings.ToLower(strings.TrimSpace(q))
			for _, entry := range kb.Entries {
				name := strings.ToLower(entry.Name)
				if strings.Contains(name, query) || strings.Contains(query, name) {
					return entry.Summary, nil
				}
			}
			return "No entry found.", nil
		},
		adapters.WithDescription("Look up information from the knowledge base"),
		adapters.WithParameters(map[string]string{
			"q": "Query to search for in the knowledge base",
		}),
		adapters.WithReturns("The matching entry summary, or a not-found message"),
	)
}

// NewWeather returns canned temperatures for a handful of cities.
func NewWeather() loom.Capability {
	temps := map[string]any{
		"paris":     "18",
		"london":    17.0,
		"dhaka":     31,
		"amsterdam": "19.5",
	}
	return adapters.NewGoCapability("weather",
		func(_ context.Context, args map[string]any) (any, error) {
			city, err := stringArg(args, "city")
			if err != nil {
				return nil, err
			}
			if temp, ok := temps[strings.ToLower(strings.TrimSpace(city))]; ok {
				return temp, nil
			}
			return "20", nil
		},
		adapters.WithDescription("Get temperature information for cities"),
		adapters.WithParameters(map[string]string{
			"city": "Name of the city to get weather for",
		}),
		adapters.WithReturns("The current temperature"),
	)
}

// NewUnitConverter converts between celsius and fahrenheit.
func NewUnitConverter() loom.Capability {
	return adapters.NewGoCapability("unit_converter",
		func(_ context.Context, args map[string]any) (any, error) {
			value, err := floatArg(args, "value")
			if err != nil {
				return nil, err
			}
			from, err := stringArg(args, "from_unit")
			if err != nil {
				return nil, err
			}
			to, err := stringArg(args, "to_unit")
			if err != nil {
				return nil, err
			}

			switch {
			case strings.EqualFold(from, "celsius") && strings.EqualFold(to, "fahrenheit"):
				return value*9/5 + 32, nil
			case strings.EqualFold(from, "fahrenheit") && strings.EqualFold(to, "celsius"):
				return (value - 32) * 5 / 9, nil
			default:
				return nil, fmt.Errorf("conversion from %s to %s not supported", from, to)
			}
		},
		adapters.WithDescription("Convert between different units of measurement"),
		adapters.WithParameters(map[string]string{
			"value":     "Value to convert",
			"from_unit": "Unit to convert from",
			"to_unit":   "Unit to convert to",
		}),
		adapters.WithReturns("The converted value"),
	)
}

// phrasebook maps foreign phrases to english, per source language.
var phrasebook = map[string]map[string]string{
	"spanish": {
		"hola": "hello", "gracias": "thank you", "adiós": "goodbye",
		"mundo": "world", "buenos días": "good morning", "buenas noches": "good night",
		"por favor": "please", "disculpe": "excuse me", "sí": "yes", "no": "no",
	},
	"french": {
		"bonjour": "hello", "merci": "thank you", "au revoir": "goodbye",
		"monde": "world", "s'il vous plaît": "please", "excusez-moi": "excuse me",
		"oui": "yes", "non": "no",
	},
	"german": {
		"hallo": "hello", "danke": "thank you", "auf wiedersehen": "goodbye",
		"welt": "world", "bitte": "please", "entschuldigung": "excuse me",
		"ja": "yes", "nein": "no",
	},
}

// NewTranslator translates phrasebook entries to and from english. Unknown
// phrases get a descriptive passthrough rather than an error.
func NewTranslator() loom.Capability {
	return adapters.NewGoCapability("translator",
		func(_ context.Context, args map[string]any) (any, error) {
			text, err := stringArg(args, "text")
			if err != nil {
				return nil, err
			}
			from := optionalStringArg(args, "from_lang", "auto")
			to := optionalStringArg(args, "to_lang", "english")

			clean := strings.ToLower(strings.TrimSpace(text))
			if strings.EqualFold(from, to) {
				return strings.TrimSpace(text), nil
			}

			if strings.EqualFold(from, "english") {
				if source, ok := phrasebook[strings.ToLower(to)]; ok {
					for foreign, english := range source {
						if english == clean {
							return foreign, nil
						}
					}
				}
			}
			if strings.EqualFold(to, "english") {
				for _, entries := range phrasebook {
					if english, ok := entries[clean]; ok {
						return english, nil
					}
				}
			}
			return fmt.Sprintf("Translated from %s to %s: %s", from, to, strings.TrimSpace(text)), nil
		},
		adapters.WithDescription("Translate text between different languages"),
		adapters.WithParameters(map[string]string{
			"text":      "Text to translate",
			"from_lang": "Source language (default: auto)",
			"to_lang":   "Target language (default: english)",
		}),
		adapters.WithReturns("The translated text"),
	)
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key, fallback string) string {
	if s, ok := args[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// floatArg accepts the numeric representations JSON decoding and literal
// plans produce.
func floatArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be numeric, got %q", key, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("argument %q must be numeric, got %T", key, v)
	}
}
