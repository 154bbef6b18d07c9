package ingest

import (
	"regexp"
	"strings"
)

// Section is one sliced example-proposal section.
type Section struct {
	Key  string
	Body string
}

// Canonical keys for common proposal headings. Unknown headings fall back to
// a snake_cased form of the heading itself.
var canonicalKeys = map[string]string{
	"EXECUTIVE SUMMARY":   "exec_summary",
	"TECHNICAL APPROACH":  "technical_approach",
	"MANAGEMENT":          "management_approach",
	"MANAGEMENT APPROACH": "management_approach",
	"STAFFING":            "staffing",
	"KEY PERSONNEL":       "staffing",
	"TRANSITION":          "transition",
	"PHASE-IN":            "transition",
	"QUALITY":             "qa_qc",
	"QUALITY ASSURANCE":   "qa_qc",
	"QUALITY CONTROL":     "qa_qc",
	"RISK":                "risk",
	"RISK MANAGEMENT":     "risk",
	"PAST PERFORMANCE":    "past_performance",
	"COMPLIANCE":          "compliance_matrix",
	"PRICING":             "pricing_narrative",
}

// Headings must sit on their own line to count as section boundaries.
var headingRe = regexp.MustCompile(`(?i)\n[ \t]*(EXECUTIVE SUMMARY|TECHNICAL APPROACH|MANAGEMENT(?: APPROACH)?|STAFFING|KEY PERSONNEL|TRANSITION|PHASE-IN|QUALITY(?: ASSURANCE| CONTROL)?|RISK(?: MANAGEMENT)?|PAST PERFORMANCE|COMPLIANCE|PRICING)[ \t]*\r?\n`)

// CanonicalKey maps a heading to its canonical section key.
func CanonicalKey(title string) string {
	upper := strings.ToUpper(strings.TrimSpace(title))
	if key, ok := canonicalKeys[upper]; ok {
		return key
	}
	return strings.ReplaceAll(strings.ToLower(upper), " ", "_")
}

// SplitSections slices an example proposal into (key, body) sections at
// recognized headings. A document with no recognized headings, or with only
// empty bodies, comes back as a single full_document section.
func SplitSections(text string) []Section {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{Key: "full_document", Body: text}}
	}

	var sections []Section
	for i, m := range matches {
		title := text[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(text[bodyStart:bodyEnd])
		if body == "" {
			continue
		}
		sections = append(sections, Section{Key: CanonicalKey(title), Body: body})
	}
	if len(sections) == 0 {
		return []Section{{Key: "full_document", Body: text}}
	}
	return sections
}
