package txextract

import (
	"strings"

	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// Bilingual header labels for the transaction table.
var headerTokens = []string{
	"type of transaction", "transaction price", "transaction date", "number of shares transacted",
	"jenis transaksi", "harga transaksi", "tanggal transaksi", "jumlah saham",
}

// Short column words; three or more on one line also reads as a header
// ("Type / Price / Date / Amount" style).
var headerWords = []string{
	"type", "price", "date", "amount",
	"jenis", "harga", "tanggal", "jumlah",
}

// Sections that follow the transaction table; reaching one ends the walk.
var stopTokens = []string{
	"purposes of transaction", "purpose of transaction", "tujuan transaksi",
	"share ownership status", "status kepemilikan saham",
	"number of shares owned after", "percentage of ownership after",
	"respectfully", "hormat",
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	for _, tok := range headerTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	hits := 0
	for _, w := range headerWords {
		if containsWord(lower, w) {
			hits++
		}
	}
	return hits >= 3
}

func isStopLine(line string) bool {
	lower := strings.ToLower(line)
	for _, tok := range stopTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func containsWord(lower, word string) bool {
	idx := strings.Index(lower, word)
	for idx >= 0 {
		before := idx == 0 || !isWordByte(lower[idx-1])
		end := idx + len(word)
		after := end == len(lower) || !isWordByte(lower[end])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// findHeader returns the index of the first header-ish line, or -1.
func findHeader(lines []string) int {
	for i, line := range lines {
		if isHeaderLine(line) {
			return i
		}
	}
	return -1
}

// stackedStrategy walks the lines after a table header collecting kind,
// price, date, and amount in that order, emitting a row per completed
// quadruple. Cells may sit on their own lines or share one; each line is
// mined for every still-missing slot before moving on.
type stackedStrategy struct {
	opts Options
}

func (s *stackedStrategy) Name() string { return "stacked-cell" }

func (s *stackedStrategy) Extract(doc *textextract.Document) []models.TransactionRow {
	headerIdx := findHeader(doc.Lines)
	if headerIdx < 0 {
		return nil
	}

	var rows []models.TransactionRow
	var kind, priceS, dateS, amountS string

	for j := headerIdx + 1; j < len(doc.Lines); j++ {
		raw := strings.TrimSpace(doc.Lines[j])
		if raw == "" {
			continue
		}
		if isStopLine(raw) {
			break
		}
		if isHeaderLine(raw) && kind == "" {
			continue
		}
		lower := strings.ToLower(raw)

		if kind == "" {
			if k, ok := kindFromText(lower); ok {
				kind = k
			}
		}
		if kind != "" && priceS == "" {
			if tok, ok := PickPrice(raw, s.opts.PriceCeiling); ok {
				priceS = tok
			}
		}
		if kind != "" && priceS != "" && dateS == "" {
			if d, ok := textextract.FindDate(raw); ok {
				dateS = d
			}
		}
		if kind != "" && priceS != "" && dateS != "" && amountS == "" {
			if tok, ok := PickAmount(raw, excludeSpans(raw, priceS)); ok {
				amountS = tok
			}
		}

		if kind != "" && priceS != "" && dateS != "" && amountS != "" {
			if row, ok := rowFromParts(kind, priceS, dateS, amountS); ok {
				rows = append(rows, row)
			}
			kind, priceS, dateS, amountS = "", "", "", ""
		}
	}
	return rows
}
