package txextract

import (
	"regexp"
	"strings"

	"insider_filings/pkg/core/numparse"
	"insider_filings/pkg/core/textextract"
)

var (
	reNumTok = regexp.MustCompile(`[0-9][0-9.,]*`)
	// thousands-grouped integer, e.g. "14.838.000"
	reBigInt = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
	// plain price shape, e.g. "55", "1250", "75.5"
	rePrice  = regexp.MustCompile(`^\d{1,6}(?:[.,]\d{1,2})?$`)
	reAnyNum = regexp.MustCompile(`^\d+(?:[.,]\d+)*$`)
)

func hasPriceHint(lower string) bool {
	return strings.Contains(lower, "harga transaksi") ||
		strings.Contains(lower, "transaction price") ||
		strings.Contains(lower, "harga:")
}

func hasAmountHint(lower string) bool {
	return strings.Contains(lower, "jumlah saham") ||
		strings.Contains(lower, "number of shares")
}

func spanContains(idx int, spans [][2]int) bool {
	for _, sp := range spans {
		if sp[0] <= idx && idx < sp[1] {
			return true
		}
	}
	return false
}

// PickPrice selects the most price-like numeric token on a line.
//
// Tokens inside a date span or directly followed by a month word are out.
// Thousands-grouped integers are amounts, not prices, unless the line carries
// an explicit price hint ("harga transaksi", "transaction price"). Remaining
// candidates are scored: +6 price hint, +2 currency marker, +1 decimal
// separator, -2 for values <=31 without a hint (day-of-month shape), -3 above
// the configured ceiling. Highest score wins; ties keep the first token.
func PickPrice(line string, ceiling float64) (string, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	hint := hasPriceHint(lower)
	dateSpans := textextract.DateSpans(s)
	currency := strings.Contains(lower, "rp") || strings.Contains(lower, "idr")

	bestTok, bestScore := "", -999
	for _, loc := range reNumTok.FindAllStringIndex(s, -1) {
		tok := s[loc[0]:loc[1]]
		if !rePrice.MatchString(tok) && !(hint && reBigInt.MatchString(tok)) {
			continue
		}
		if spanContains(loc[0], dateSpans) {
			continue
		}
		window := s[loc[0]:]
		if len(window) > 12 {
			window = window[:12]
		}
		if textextract.NearMonthWord(window) {
			continue
		}

		score := 0
		if hint {
			score += 6
		}
		if currency {
			score += 2
		}
		if strings.ContainsAny(tok, ".,") {
			score++
		}
		val := numparse.ParseNumber(tok)
		if val <= 31 && score < 6 {
			score -= 2
		}
		if ceiling > 0 && val > ceiling {
			score -= 3
		}
		if score > bestScore {
			bestScore, bestTok = score, tok
		}
	}
	return bestTok, bestTok != ""
}

// PickAmount selects an amount token from a line, skipping the given byte
// spans (matched dates and the already-chosen price token). Thousands-grouped
// tokens win outright; 8-digit tokens that read as a calendar date are
// rejected; otherwise the numerically largest token is kept, requiring at
// least 1000 when the line names a share count explicitly.
func PickAmount(line string, exclude [][2]int) (string, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return "", false
	}
	amountHinted := hasAmountHint(strings.ToLower(s))

	bestTok, bestVal := "", int64(-1)
	for _, loc := range reNumTok.FindAllStringIndex(s, -1) {
		tok := s[loc[0]:loc[1]]
		if spanContains(loc[0], exclude) {
			continue
		}
		if textextract.IsNumericDate(tok) {
			continue
		}
		if reBigInt.MatchString(tok) {
			return tok, true
		}
		if !reAnyNum.MatchString(tok) {
			continue
		}
		val := numparse.ParseInt(tok)
		if amountHinted && val < 1000 {
			continue
		}
		if val > bestVal {
			bestVal, bestTok = val, tok
		}
	}
	return bestTok, bestTok != ""
}

// kindFromText maps a transaction-kind keyword in the text to its canonical
// direction. Sell keywords are checked before buy, matching classifier order.
func kindFromText(lower string) (string, bool) {
	switch {
	case strings.Contains(lower, "sell") || strings.Contains(lower, "penjualan"):
		return "sell", true
	case strings.Contains(lower, "buy") || strings.Contains(lower, "pembelian"):
		return "buy", true
	case strings.Contains(lower, "transfer") || strings.Contains(lower, "pengalihan"):
		return "transfer", true
	}
	return "", false
}

// excludeSpans collects the byte spans of all date-like fragments plus every
// occurrence of the chosen price token, for amount selection on mixed lines.
func excludeSpans(line, priceTok string) [][2]int {
	spans := textextract.DateSpans(line)
	if priceTok == "" {
		return spans
	}
	for _, loc := range reNumTok.FindAllStringIndex(line, -1) {
		if line[loc[0]:loc[1]] == priceTok {
			spans = append(spans, [2]int{loc[0], loc[1]})
		}
	}
	return spans
}
