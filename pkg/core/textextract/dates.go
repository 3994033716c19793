package textextract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var monthsEN = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
}

var monthsID = map[string]int{
	"januari": 1, "februari": 2, "maret": 3, "april": 4, "mei": 5, "juni": 6,
	"juli": 7, "agustus": 8, "september": 9, "oktober": 10, "november": 11, "desember": 12,
}

const (
	// Full-date patterns, "13 August 2025" / "13 Agustus 2025"
	PatternDateEN = `\b(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})\b`
	PatternDateID = `\b(\d{1,2})\s+(Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s+(\d{4})\b`
)

var (
	reDateEN  = regexp.MustCompile(`(?i)` + PatternDateEN)
	reDateID  = regexp.MustCompile(`(?i)` + PatternDateID)
	reDateAny = regexp.MustCompile(`(?i)(?:` + PatternDateEN + `)|(?:` + PatternDateID + `)`)

	// Abbreviated or full month words in either language, used for
	// adjacency checks ("30 Okt" must not be read as a price of 30).
	monthWord = `(?:Jan(?:uary|uari)?|Feb(?:ruary|ruari)?|Mar(?:ch|et)?|Apr(?:il)?|May|Mei|Jun[ei]?|Jul[yi]?|Agu(?:stus)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|O[ck]t(?:ober)?|Nov(?:ember)?|De[sc](?:ember)?)`

	reMonthWord  = regexp.MustCompile(`(?i)\b` + monthWord + `\b`)
	reLooseDate  = regexp.MustCompile(`(?i)\b\d{1,2}\s+` + monthWord + `(?:\s+\d{2,4})?\b`)
	reNumericYMD = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
)

// ParseDate normalizes the first English or Indonesian full date found in s
// to YYYYMMDD form. Returns ("", false) when no date is present.
func ParseDate(s string) (string, bool) {
	if m := reDateEN.FindStringSubmatch(s); m != nil {
		return ymd(m[3], monthsEN[strings.ToLower(m[2])], m[1]), true
	}
	if m := reDateID.FindStringSubmatch(s); m != nil {
		return ymd(m[3], monthsID[strings.ToLower(m[2])], m[1]), true
	}
	return "", false
}

func ymd(year string, month int, day string) string {
	y, _ := strconv.Atoi(year)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%04d%02d%02d", y, month, d)
}

// FindDate returns the first raw date substring in s, in either language.
func FindDate(s string) (string, bool) {
	if m := reDateAny.FindString(s); m != "" {
		return m, true
	}
	return "", false
}

// DateSpans returns the [start,end) byte spans of anything date-like in s,
// including bare "30 Okt" fragments without a year. Token selection uses
// these to keep days-of-month out of price candidates.
func DateSpans(s string) [][2]int {
	var spans [][2]int
	for _, loc := range reDateAny.FindAllStringIndex(s, -1) {
		spans = append(spans, [2]int{loc[0], loc[1]})
	}
	for _, loc := range reLooseDate.FindAllStringIndex(s, -1) {
		spans = append(spans, [2]int{loc[0], loc[1]})
	}
	return spans
}

// NearMonthWord reports whether a month name appears in s.
func NearMonthWord(s string) bool {
	return reMonthWord.MatchString(s)
}

// IsNumericDate reports whether an 8-digit token parses as a plausible
// YYYYMMDD calendar date. Amount selection rejects such tokens.
func IsNumericDate(tok string) bool {
	m := reNumericYMD.FindStringSubmatch(tok)
	if m == nil {
		return false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return year >= 1990 && year <= 2100 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}
