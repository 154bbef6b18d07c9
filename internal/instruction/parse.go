package instruction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports LLM output that contained no JSON object. The raw text
// is preserved for diagnosis; it is never silently replaced with a default.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm did not return valid JSON for schema parsing; raw output:\n%s", e.Raw)
}

// StripFences removes a Markdown code-fence wrapper if present.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```json"))
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```"))
	}
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	return cleaned
}

// ParseJSON decodes the model output into a generic JSON value. Direct
// parsing is tried first; on failure the first balanced {...} block is
// extracted via bracket matching. No object at all is a hard failure.
func ParseJSON(raw string) (any, error) {
	cleaned := StripFences(raw)

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err == nil {
		return value, nil
	}

	block, ok := firstBalancedObject(cleaned)
	if !ok {
		return nil, &ParseError{Raw: raw}
	}
	if err := json.Unmarshal([]byte(block), &value); err != nil {
		return nil, &ParseError{Raw: raw}
	}
	return value, nil
}

// firstBalancedObject scans for the first top-level {...} block, respecting
// string literals and escapes.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
