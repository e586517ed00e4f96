package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// parseObject isolates a JSON object from free-form oracle output and
// flattens it to string values. Returns ok=false when no object can be
// decoded.
func parseObject(text string) (map[string]string, bool) {
	cleaned := cleanJSON(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, false
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = coerceValue(v)
	}
	return out, true
}

// cleanJSON strips markdown code fences and prose around the response's
// JSON object, and normalizes typographic quotes the oracle sometimes
// emits.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	replacer := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	return strings.TrimSpace(replacer.Replace(text))
}

// coerceValue flattens an arbitrary JSON value to a single string. Null
// becomes the empty string, lists are comma-joined, nested objects are
// re-encoded compactly.
func coerceValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			if s := coerceValue(el); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
