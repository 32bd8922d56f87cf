package guard

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize_TrimAndCollapse(t *testing.T) {
	got, err := Sanitize("  hello    there\tworld \n", 0)
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	if got != "hello there world" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
}

func TestSanitize_StripsScriptTags(t *testing.T) {
	got, err := Sanitize(`question <script>alert('x')</script> here`, 0)
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Errorf("script content should be stripped, got %q", got)
	}
	if got != "question here" {
		t.Errorf("expected %q, got %q", "question here", got)
	}
}

func TestSanitize_TruncatesToMax(t *testing.T) {
	long := strings.Repeat("a", 25000)
	got, err := Sanitize(long, DefaultMaxLength)
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	if len(got) != DefaultMaxLength {
		t.Errorf("expected length %d, got %d", DefaultMaxLength, len(got))
	}
}

func TestSanitize_TruncationKeepsRuneBoundaries(t *testing.T) {
	// é is two bytes; an odd cap would split it without the boundary backoff.
	long := strings.Repeat("é", 200)
	for _, maxLen := range []int{7, 15, 100} {
		got, err := Sanitize(long, maxLen)
		if err != nil {
			t.Fatalf("Sanitize failed for maxLen %d: %v", maxLen, err)
		}
		if !utf8.ValidString(got) {
			t.Errorf("maxLen %d: truncated text is not valid UTF-8: %q", maxLen, got)
		}
		if len(got) > maxLen {
			t.Errorf("maxLen %d: length %d exceeds cap", maxLen, len(got))
		}
	}
}

func TestSanitize_EmptyAfterCleanup(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n", "<script>x</script>"} {
		if _, err := Sanitize(input, 0); err == nil {
			t.Errorf("expected error for input %q", input)
		}
	}
}

func TestValidName(t *testing.T) {
	valid := []string{"calc", "unit_converter", "_private", "Tool2"}
	for _, name := range valid {
		if !ValidName(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}

	invalid := []string{"", "2fast", "has-dash", "with space", "dot.name", "ünïcode"}
	for _, name := range invalid {
		if ValidName(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}
