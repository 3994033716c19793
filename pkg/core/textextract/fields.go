package textextract

import (
	"regexp"
	"strings"
)

var (
	wideGap    = regexp.MustCompile(`\s{3,}|\t+`)
	twoGap     = regexp.MustCompile(`\s{2,}|\t+`)
	numberTok  = regexp.MustCompile(`[0-9][0-9.,]*`)
	percentTok = regexp.MustCompile(`([0-9][0-9.,]*)%?`)
)

// Label stop-words: a candidate value line containing one of these is
// probably another field's label, not a value.
var skipWords = []string{":", "nama", "kode", "jumlah", "persentase", "jenis", "tanggal"}

func isSkipLine(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range skipWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// FindTableValue returns the most likely value associated with a keyword
// label in a table-like layout. Heuristics in order: split the label's own
// line on wide whitespace runs, regex-capture trailing text, then scan the
// next two lines skipping anything that looks like another label.
// An empty result means "field absent"; callers must treat it as such.
func (d *Document) FindTableValue(keyword string) string {
	lowerKey := strings.ToLower(keyword)
	for i, line := range d.Lines {
		if !strings.Contains(strings.ToLower(line), lowerKey) {
			continue
		}

		// (a) wide-whitespace column split
		parts := wideGap.Split(line, -1)
		if len(parts) >= 2 {
			value := strings.TrimSpace(parts[len(parts)-1])
			if !strings.EqualFold(value, keyword) && len(value) > 1 {
				return value
			}
		}

		// (b) trailing text after the label
		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword) + `\s+(.+)`)
		if m := pattern.FindStringSubmatch(line); m != nil {
			if value := strings.TrimSpace(m[1]); len(value) > 1 {
				return value
			}
		}

		// (c) next 1-2 lines, skipping other labels
		for j := i + 1; j < min(i+3, len(d.Lines)); j++ {
			if d.Lines[j] != "" && !isSkipLine(d.Lines[j]) {
				return d.Lines[j]
			}
		}
	}
	return ""
}

// FindValueInLine returns the remainder of the first line containing the
// keyword, split once on a two-space (or tab) gap.
func (d *Document) FindValueInLine(keyword string) string {
	lowerKey := strings.ToLower(keyword)
	for _, line := range d.Lines {
		if !strings.Contains(strings.ToLower(line), lowerKey) {
			continue
		}
		if loc := twoGap.FindStringIndex(line); loc != nil {
			return strings.TrimSpace(line[loc[1]:])
		}
	}
	return ""
}

// FindValueAfterKeyword returns the first usable line after the keyword line.
func (d *Document) FindValueAfterKeyword(keyword string) string {
	lowerKey := strings.ToLower(keyword)
	for i, line := range d.Lines {
		if !strings.Contains(strings.ToLower(line), lowerKey) {
			continue
		}
		for j := i + 1; j < min(i+3, len(d.Lines)); j++ {
			if d.Lines[j] != "" && !isSkipLine(d.Lines[j]) {
				return d.Lines[j]
			}
		}
	}
	return ""
}

// FindNumberAfterKeyword finds the first numeric token tied to the keyword,
// on the same line or within the next two lines.
func (d *Document) FindNumberAfterKeyword(keyword string) string {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword) + `\s*:?\s*([0-9.,]+)`)
	for _, line := range d.Lines {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	// Fallback: any number in the following lines
	lowerKey := strings.ToLower(keyword)
	for i, line := range d.Lines {
		if !strings.Contains(strings.ToLower(line), lowerKey) {
			continue
		}
		for j := i + 1; j < min(i+3, len(d.Lines)); j++ {
			if m := numberTok.FindString(d.Lines[j]); m != "" {
				return m
			}
		}
	}
	return ""
}

// FindPercentageAfterKeyword behaves like FindNumberAfterKeyword but
// tolerates a trailing percent sign.
func (d *Document) FindPercentageAfterKeyword(keyword string) string {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword) + `\s*:?\s*([0-9.,]+)%?`)
	for _, line := range d.Lines {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	lowerKey := strings.ToLower(keyword)
	for i, line := range d.Lines {
		if !strings.Contains(strings.ToLower(line), lowerKey) {
			continue
		}
		for j := i + 1; j < min(i+3, len(d.Lines)); j++ {
			if m := percentTok.FindStringSubmatch(d.Lines[j]); m != nil {
				return m[1]
			}
		}
	}
	return ""
}
