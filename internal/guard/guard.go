// Package guard provides input sanitization and the capability identifier
// grammar.
package guard

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the sanitized input length cap.
const DefaultMaxLength = 10000

// ErrEmptyInput is returned when nothing remains after sanitization.
var ErrEmptyInput = errors.New("input is empty after sanitization")

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Markup the sanitizer strips outright. Script/style bodies go with
	// their tags; stray tags from the denylist are removed on their own.
	markupDenylist = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`),
		regexp.MustCompile(`(?i)</?(script|style|iframe|object|embed)\b[^>]*>`),
	}

	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Sanitize normalizes raw user input: trims, collapses internal whitespace
// runs to single spaces, strips denylisted markup, and truncates to maxLen.
// It fails only when the result is empty.
func Sanitize(text string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	for _, re := range markupDenylist {
		text = re.ReplaceAllString(text, " ")
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if len(text) > maxLen {
		// Back off to a rune boundary so the cut never leaves a partial
		// UTF-8 sequence behind.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	if text == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}

// ValidName reports whether name matches the capability identifier grammar:
// ASCII letters, digits, underscore, not numeric-leading.
func ValidName(name string) bool {
	return identifier.MatchString(name)
}
