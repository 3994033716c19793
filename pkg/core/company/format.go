package company

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Acronyms kept uppercase when pretty-printing names.
var commonUpper = map[string]bool{
	"PT": true, "CV": true, "UD": true, "LLC": true, "LLP": true, "INC": true,
	"NV": true, "BV": true, "GMBH": true, "BHD": true, "PLC": true, "RI": true,
	"OJK": true, "KPK": true, "BPK": true, "BPKP": true,
}

// Corporate suffix tokens dropped when building normalized matching keys.
var corpStopwords = map[string]bool{
	"PT": true, "P.T": true, "PERSEROAN": true, "TERBATAS": true,
	"TBK": true, "PERSERO": true,
}

var (
	tokenSplit   = regexp.MustCompile(`[^A-Z0-9]+`)
	diacriticsTx = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ptVariant    = regexp.MustCompile(`(?i)\bP\.?\s*T\.?\b`)
	tbkVariant   = regexp.MustCompile(`(?i)\bTBK\.?\b`)
	multiSpace   = regexp.MustCompile(`\s+`)
	namePartSep  = regexp.MustCompile(`(\s+|[&(),.-])`)
)

// StripDiacritics removes accents: "é" -> "e".
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacriticsTx, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeKey builds the uppercase matching key for a company name:
// diacritics stripped, "&" expanded, corporate suffix tokens removed,
// whitespace collapsed. "PT Alpha Beta Tbk" and "PT ALPHA BETA TBK" both
// normalize to "ALPHA BETA".
func NormalizeKey(s string) string {
	s = strings.ToUpper(StripDiacritics(s))
	s = strings.ReplaceAll(s, "&", " AND ")

	var kept []string
	for _, tok := range tokenSplit.Split(s, -1) {
		if tok == "" || corpStopwords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// PrettyName formats a raw company name for display: standardized "PT" and
// "Tbk" spellings, known acronyms uppercased, the rest title-cased.
func PrettyName(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(StripDiacritics(raw))
	s = ptVariant.ReplaceAllString(s, "PT")
	s = tbkVariant.ReplaceAllString(s, "Tbk")

	parts := splitKeepSeparators(s)
	var b strings.Builder
	for _, tok := range parts {
		b.WriteString(formatNameToken(tok))
	}

	out := multiSpace.ReplaceAllString(b.String(), " ")
	out = strings.Trim(out, " ,.;-")
	out = strings.ReplaceAll(out, " ,", ",")
	out = strings.ReplaceAll(out, " .", ".")
	return out
}

func splitKeepSeparators(s string) []string {
	var parts []string
	last := 0
	for _, loc := range namePartSep.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}
	return parts
}

func formatNameToken(tok string) string {
	if tok == "" || strings.TrimSpace(tok) == "" || strings.ContainsAny(tok, "&(),.-") {
		return tok
	}
	up := strings.ToUpper(tok)
	if commonUpper[up] {
		return up
	}
	if up == "TBK" {
		return "Tbk"
	}
	return titleCase(tok)
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}
