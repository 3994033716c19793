package txextract

import (
	"strings"

	"insider_filings/pkg/core/numparse"
	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// windowStrategy runs when a table header exists but the stacked walk
// produced nothing (split or reordered cells). It scans a short window after
// the header once, taking the best candidate for each slot regardless of
// order, and yields at most one row.
type windowStrategy struct {
	opts Options
}

func (s *windowStrategy) Name() string { return "window" }

func (s *windowStrategy) Extract(doc *textextract.Document) []models.TransactionRow {
	headerIdx := findHeader(doc.Lines)
	if headerIdx < 0 {
		return nil
	}
	end := headerIdx + 1 + s.opts.WindowSize
	if end > len(doc.Lines) {
		end = len(doc.Lines)
	}
	window := doc.Lines[headerIdx+1 : end]
	if len(window) == 0 {
		return nil
	}

	var kind string
	for _, line := range window {
		if k, ok := kindFromText(strings.ToLower(line)); ok {
			kind = k
			break
		}
	}

	var priceS string
	for _, line := range window {
		if tok, ok := PickPrice(line, s.opts.PriceCeiling); ok {
			priceS = tok
			break
		}
	}

	var dateS string
	for _, line := range window {
		if d, ok := textextract.FindDate(line); ok {
			dateS = d
			break
		}
	}

	// amount: a whole-line thousands-grouped token wins, else the largest
	// whole-line numeric token
	var amountS string
	var maxVal int64 = -1
	for _, line := range window {
		tok := strings.TrimSpace(line)
		if reBigInt.MatchString(tok) {
			amountS = tok
			break
		}
		if reAnyNum.MatchString(tok) && !textextract.IsNumericDate(tok) {
			if val := numparse.ParseInt(tok); val > maxVal {
				maxVal, amountS = val, tok
			}
		}
	}

	if kind == "" || priceS == "" || dateS == "" || amountS == "" {
		return nil
	}
	row, ok := rowFromParts(kind, priceS, dateS, amountS)
	if !ok {
		return nil
	}
	return []models.TransactionRow{row}
}
