package txextract

import (
	"strings"

	"insider_filings/pkg/core/numparse"
	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// narrativeStrategy is the last resort for documents that state a price only
// in prose ("dengan harga Rp 1.250 per saham"). It returns a single row with
// just the price populated; type, amount, and date stay unset for later
// stages to fill from holdings deltas.
type narrativeStrategy struct {
	opts Options
}

func (s *narrativeStrategy) Name() string { return "narrative" }

func (s *narrativeStrategy) Extract(doc *textextract.Document) []models.TransactionRow {
	floor, ceiling := s.opts.NarrativeFloor, s.opts.NarrativeCeiling

	// hinted lines first, any line second
	for _, hintedOnly := range []bool{true, false} {
		for _, line := range doc.Lines {
			if hintedOnly != hasPriceHint(strings.ToLower(line)) {
				continue
			}
			tok, ok := PickPrice(line, s.opts.PriceCeiling)
			if !ok {
				continue
			}
			val := numparse.ParseNumber(tok)
			if val < floor || val > ceiling {
				continue
			}
			return []models.TransactionRow{{
				Type:     models.TxUnknown,
				Price:    val,
				HasPrice: true,
			}}
		}
	}
	return nil
}
