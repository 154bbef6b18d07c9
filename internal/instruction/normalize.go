package instruction

import (
	"math"
	"strconv"
	"strings"
)

// listFields are the fields coerced to []string during normalization.
var listFields = []string{
	"must_include",
	"micro_outline",
	"tone_rules",
	"win_themes",
	"evidence_prompts",
	"compliance_checklist",
	"acceptance_criteria",
	"gaps",
}

// Normalize repairs common model deviations before schema validation. Every
// pass is total: malformed input degrades to a safe shape, it never fails.
// The strict boundary comes afterwards, in Decode.
func Normalize(value any) map[string]any {
	obj := unwrapObject(value)
	if obj == nil {
		return nil
	}
	normalizeLengthHint(obj)
	coerceListFields(obj)
	backfillSectionKey(obj)
	return obj
}

// unwrapObject picks the first object element when the top-level value is a
// list.
func unwrapObject(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case []any:
		for _, el := range v {
			if obj, ok := el.(map[string]any); ok {
				return obj
			}
		}
	}
	return nil
}

// normalizeLengthHint coerces length_hint_words into {min, max}: a bare
// number becomes an approximate target, a partial object is backfilled from
// approx, and anything unusable defaults to {1200, 1800}.
func normalizeLengthHint(obj map[string]any) {
	value, present := obj["length_hint_words"]
	if !present {
		obj["length_hint_words"] = map[string]any{"min": 1200, "max": 1800}
		return
	}

	if n, ok := asInt(value); ok {
		min := int(math.Round(float64(n) * 0.8))
		if min < 300 {
			min = 300
		}
		obj["length_hint_words"] = map[string]any{"min": min, "max": n}
		return
	}

	if hint, ok := value.(map[string]any); ok {
		approx, hasApprox := asInt(hint["approx"])
		min, hasMin := asInt(hint["min"])
		max, hasMax := asInt(hint["max"])

		if hasApprox {
			if !hasMin {
				min = int(math.Round(float64(approx) * 0.8))
				if min < 300 {
					min = 300
				}
				hasMin = true
			}
			if !hasMax {
				max = approx
				hasMax = true
			}
		}
		if !hasMin {
			min = 1200
		}
		if !hasMax {
			max = min + 300
			if max < 1800 {
				max = 1800
			}
		}
		obj["length_hint_words"] = map[string]any{"min": min, "max": max}
		return
	}

	obj["length_hint_words"] = map[string]any{"min": 1200, "max": 1800}
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// coerceListFields turns a bare string into a list: newline-split when that
// yields more than one line, else semicolon-split, else a single-item list.
// Null becomes an empty list.
func coerceListFields(obj map[string]any) {
	for _, field := range listFields {
		if _, present := obj[field]; !present {
			obj[field] = []any{}
			continue
		}
		obj[field] = asList(obj[field])
	}
}

func asList(value any) []any {
	switch v := value.(type) {
	case nil:
		return []any{}
	case []any:
		out := make([]any, 0, len(v))
		for _, el := range v {
			s := strings.TrimSpace(stringify(el))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var lines []any
		for _, line := range strings.Split(v, "\n") {
			line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-•\t "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 1 {
			return lines
		}
		var parts []any
		for _, part := range strings.Split(v, ";") {
			part = strings.TrimSpace(part)
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
		return []any{}
	default:
		return []any{}
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// backfillSectionKey derives section_key from the title when missing.
func backfillSectionKey(obj map[string]any) {
	if key, _ := obj["section_key"].(string); strings.TrimSpace(key) != "" {
		return
	}
	title, _ := obj["title"].(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	obj["section_key"] = KeyFromTitle(title)
}

// KeyFromTitle lowercases a title and replaces spaces and slashes with
// underscores.
func KeyFromTitle(title string) string {
	key := strings.ToLower(strings.TrimSpace(title))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}
