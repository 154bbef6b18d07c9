package ingest

import "strings"

// Splitter chunks long text recursively: it splits on the first separator
// present in the text, recurses into pieces that are still too large with the
// remaining separators, and merges adjacent pieces back up to the chunk size
// with a trailing overlap carried into the next chunk.
type Splitter struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

// NewSplitter returns the chunking configuration used for RFP documents:
// generous chunks with markdown-ish heading separators so long-form
// generations get cohesive context blocks.
func NewSplitter() *Splitter {
	return &Splitter{
		ChunkSize:  1400,
		Overlap:    200,
		Separators: []string{"\n## ", "\n# ", "\n\n", "\n", " "},
	}
}

func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.Separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	sep := ""
	rest := separators
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = hardSplit(text, s.ChunkSize)
	} else {
		for _, part := range strings.Split(text, sep) {
			if part == "" {
				continue
			}
			if len(part) > s.ChunkSize {
				pieces = append(pieces, s.split(part, rest)...)
			} else {
				pieces = append(pieces, part)
			}
		}
	}
	return s.merge(pieces, sep)
}

// merge greedily packs pieces into chunks at most ChunkSize long, carrying
// Overlap characters of the previous chunk into the next one.
func (s *Splitter) merge(pieces []string, sep string) []string {
	joiner := sep
	if joiner == "" {
		joiner = " "
	}

	var chunks []string
	var current strings.Builder
	for _, piece := range pieces {
		extra := len(piece)
		if current.Len() > 0 {
			extra += len(joiner)
		}
		if current.Len() > 0 && current.Len()+extra > s.ChunkSize {
			chunk := current.String()
			chunks = append(chunks, chunk)
			current.Reset()
			if s.Overlap > 0 && len(chunk) > s.Overlap {
				current.WriteString(chunk[len(chunk)-s.Overlap:])
			}
		}
		if current.Len() > 0 {
			current.WriteString(joiner)
		}
		current.WriteString(piece)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func hardSplit(text string, size int) []string {
	var out []string
	for len(text) > size {
		out = append(out, text[:size])
		text = text[size:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
