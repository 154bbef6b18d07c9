package draft

import (
	"regexp"
	"strings"
)

// CheckResult is one checklist item's coverage verdict. Method names the
// technique used so richer checks can be added later without a shape change.
type CheckResult struct {
	Item   string `json:"item"`
	Met    bool   `json:"met"`
	Method string `json:"method"`
}

var tokenRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

// CheckCompliance runs a keyword presence check per checklist item: the first
// six tokens of three or more characters must all appear in the draft text.
// It is a guard-rail surfacing likely gaps for a human, not an audit.
func CheckCompliance(draftHTML string, checklist []string) []CheckResult {
	text := strings.ToLower(StripHTML(draftHTML))

	out := make([]CheckResult, 0, len(checklist))
	for _, item := range checklist {
		var toks []string
		for _, t := range tokenRe.FindAllString(strings.ToLower(item), -1) {
			if len(t) >= 3 {
				toks = append(toks, t)
			}
			if len(toks) == 6 {
				break
			}
		}
		met := len(toks) > 0
		for _, t := range toks {
			if !strings.Contains(text, t) {
				met = false
				break
			}
		}
		out = append(out, CheckResult{Item: item, Met: met, Method: "keyword"})
	}
	return out
}
