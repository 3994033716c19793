// Package textextract provides keyword-anchored field lookup over the
// line-oriented text of one filing document. PDF rendering gives no schema
// guarantee, so every lookup runs a chain of heuristics and reports absence
// as an empty result rather than an error.
package textextract

import (
	"strings"
)

// Document is the ordered, immutable sequence of trimmed non-empty lines of
// one filing. It is owned by the extraction pass for that document.
type Document struct {
	Lines []string
}

// NewDocument splits raw text into trimmed non-empty lines.
func NewDocument(text string) *Document {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return &Document{Lines: lines}
}

// NewDocumentFromLines wraps an already-split line sequence.
func NewDocumentFromLines(lines []string) *Document {
	var kept []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return &Document{Lines: kept}
}

// Text returns the joined line sequence.
func (d *Document) Text() string {
	return strings.Join(d.Lines, "\n")
}

// SliceToEnglish cuts the document at the bilingual page marker so extraction
// runs on the English section only. IDX documents repeat every field in
// Indonesian after a "go to indonesian page" marker.
func (d *Document) SliceToEnglish() *Document {
	for i, line := range d.Lines {
		if strings.Contains(strings.ToLower(line), "go to indonesian page") {
			return NewDocumentFromLines(d.Lines[i+1:])
		}
	}
	return d
}
