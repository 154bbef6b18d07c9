package draft

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML reduces markup to plain text with single spaces between text
// nodes. Malformed markup is tolerated; the tokenizer never fails, it just
// stops at the end of input.
func StripHTML(markup string) string {
	if markup == "" {
		return ""
	}
	tok := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			text := strings.TrimSpace(string(tok.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
}

// sentences splits plain text on periods. Naive, but adequate for a
// copying guard.
func sentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
