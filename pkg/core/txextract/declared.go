package txextract

import (
	"strings"

	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// ScanDeclaredType finds the document-level stated direction: the first
// "transaction type" label, then up to 8 following lines for a direction
// keyword. Many filings state the type once up front and itemize rows later.
func ScanDeclaredType(doc *textextract.Document) (models.TxType, bool) {
	for i, line := range doc.Lines {
		if !strings.Contains(strings.ToLower(line), "transaction type") &&
			!strings.Contains(strings.ToLower(line), "jenis transaksi") {
			continue
		}
		end := i + 8
		if end > len(doc.Lines) {
			end = len(doc.Lines)
		}
		for j := i + 1; j < end; j++ {
			if kind, ok := kindFromText(strings.ToLower(doc.Lines[j])); ok {
				switch kind {
				case "buy":
					return models.TxBuy, true
				case "sell":
					return models.TxSell, true
				default:
					return models.TxTransfer, true
				}
			}
		}
		break
	}
	return models.TxUnknown, false
}
