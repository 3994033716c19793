package txextract

import (
	"strings"

	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// looseStrategy handles documents with no table header at all. A line only
// qualifies when it names a transaction kind AND carries an explicit price
// context ("harga transaksi", "transaction price"); without that anchor a
// prose line with stray numbers is too easy to misread.
type looseStrategy struct {
	opts Options
}

func (s *looseStrategy) Name() string { return "loose-line" }

func (s *looseStrategy) Extract(doc *textextract.Document) []models.TransactionRow {
	var rows []models.TransactionRow
	for _, line := range doc.Lines {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		lower := strings.ToLower(raw)
		kind, ok := kindFromText(lower)
		if !ok || !hasPriceHint(lower) {
			continue
		}

		priceS, ok := PickPrice(raw, s.opts.PriceCeiling)
		if !ok {
			continue
		}
		dateS, _ := textextract.FindDate(raw)
		amountS, ok := PickAmount(raw, excludeSpans(raw, priceS))
		if !ok {
			continue
		}

		if row, rok := rowFromParts(kind, priceS, dateS, amountS); rok {
			rows = append(rows, row)
		}
	}
	return rows
}
