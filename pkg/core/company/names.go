package company

import (
	"regexp"
	"strings"
	"unicode"
)

// Organization tokens used to classify a holder as an institution.
var orgTokens = []string{
	"PT", "TBK", "PTE", "LTD", "LIMITED", "INC", "CORP", "CORPORATION",
	"NV", "BV", "B.V.", "GMBH", "LLC", "LP", "LLP", "PLC",
	"SDN BHD", "BHD", "BERHAD",
	"BANK", "SECURITIES", "SEKURITAS",
	"ASSET MANAGEMENT", "MANAJER INVESTASI", "INVESTMENT", "FUND",
	"YAYASAN", "FOUNDATION", "KOPERASI", "UNIVERSITAS", "PERSERO",
}

var orgPrefix = regexp.MustCompile(`\b(PT|CV|UD|YAYASAN|KOPERASI|BANK|SEKURITAS)\b`)

// Tokens preserved verbatim when title-casing holder names.
var holderSpecialCaps = map[string]bool{
	"PT": true, "CV": true, "UD": true, "LLC": true, "LLP": true, "INC": true,
	"NV": true, "BV": true, "GMBH": true, "BHD": true, "PLC": true, "RI": true,
	"OJK": true, "KPK": true, "BPK": true, "BPKP": true,
	"TBK": true, "LTD": true, "CORP": true,
}

// ClassifyHolderType labels a holder "institution" when org-like tokens
// appear in the name, "insider" otherwise. Heuristic, bilingual.
func ClassifyHolderType(name string) string {
	if name == "" {
		return "insider"
	}
	upper := strings.ToUpper(multiSpace.ReplaceAllString(name, " "))
	for _, tok := range orgTokens {
		if strings.Contains(upper, tok) {
			return "institution"
		}
	}
	if orgPrefix.MatchString(upper) {
		return "institution"
	}
	return "insider"
}

// CleanHolderName normalizes a holder name into readable title case while
// keeping known acronyms uppercase. Non-printable characters are dropped.
func CleanHolderName(name string) string {
	if name == "" {
		return ""
	}
	var printable strings.Builder
	for _, r := range name {
		if unicode.IsPrint(r) {
			printable.WriteRune(r)
		}
	}

	words := strings.Fields(strings.ReplaceAll(printable.String(), "\n", " "))
	for i, w := range words {
		stripped := strings.Trim(strings.ToUpper(w), ".,")
		if holderSpecialCaps[stripped] {
			words[i] = stripped
		} else {
			words[i] = titleCase(w)
		}
	}
	return strings.Join(words, " ")
}

// IsValidHolder rejects empty, too-short, or mostly-numeric holder names.
// A filing without a plausible holder cannot become a record.
func IsValidHolder(name string) bool {
	n := strings.TrimSpace(name)
	if len(n) < 3 {
		return false
	}
	letters := 0
	for _, r := range n {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return float64(letters)/float64(len(n)) >= 0.40
}
