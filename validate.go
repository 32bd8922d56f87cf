package loom

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FormatOutput normalizes a raw answer value into the text returned to the
// caller. Nil becomes a fixed placeholder, numbers are rendered in canonical
// form, strings pass through unchanged, and structured values are rendered
// as indented JSON. Values that cannot be serialized fall back to their
// default string form.
func FormatOutput(value any) string {
	if value == nil {
		return "No result"
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case error:
		return v.Error()
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

// formatFloat renders whole-number floats without a fractional part, so a
// calculation yielding 4.0 reads as "4".
func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
