package txextract

import (
	"regexp"
	"strings"

	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// Labeled-paragraph layout:
//
//	Type of Transaction: Buy ... Transaction Price: 1.500 ...
//	Transaction Date: 13 August 2025 ... Number of Shares Transacted: 800.000
//
// The four labels may be separated by arbitrary text including newlines.
var reBlock = regexp.MustCompile(`(?is)` +
	`Type of Transaction:\s*(Buy|Sell|Transfer|Pembelian|Penjualan|Pengalihan).*?` +
	`Transaction Price:\s*([0-9.,]+).*?` +
	`Transaction Date:\s*([0-9]{1,2}\s+[A-Za-z]+\s+[0-9]{4}).*?` +
	`Number of Shares Transacted:\s*([0-9.,]+)`)

type blockStrategy struct{}

func (s *blockStrategy) Name() string { return "block" }

func (s *blockStrategy) Extract(doc *textextract.Document) []models.TransactionRow {
	var rows []models.TransactionRow
	for _, m := range reBlock.FindAllStringSubmatch(doc.Text(), -1) {
		kind, _ := kindFromText(strings.ToLower(m[1]))
		if row, ok := rowFromParts(kind, m[2], m[3], m[4]); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
