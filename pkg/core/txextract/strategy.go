// Package txextract pulls itemized transaction rows (type, price, date,
// amount) out of filing documents. Layouts in the wild range from clean
// stacked-cell tables to a single prose sentence, so extraction runs an
// ordered chain of strategies and keeps the first one that yields rows.
package txextract

import (
	"log"

	"insider_filings/pkg/core/numparse"
	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// Strategy is one extraction algorithm. Returning zero rows is a valid
// outcome meaning "this layout does not apply", never an error.
type Strategy interface {
	Name() string
	Extract(doc *textextract.Document) []models.TransactionRow
}

// Options hold the tunable extraction thresholds.
type Options struct {
	// PriceCeiling caps plausible per-share prices; tokens above it score down.
	PriceCeiling float64 `yaml:"price_ceiling"`
	// NarrativeFloor/NarrativeCeiling bound the last-resort prose price scan.
	NarrativeFloor   float64 `yaml:"narrative_price_floor"`
	NarrativeCeiling float64 `yaml:"narrative_price_ceiling"`
	// WindowSize is how many lines after a table header the fallback scans.
	WindowSize int `yaml:"window_size"`
}

// DefaultOptions returns the thresholds used in production runs.
func DefaultOptions() Options {
	return Options{
		PriceCeiling:     500_000,
		NarrativeFloor:   50,
		NarrativeCeiling: 100_000,
		WindowSize:       14,
	}
}

// Extractor runs the strategy chain over one document at a time. It is
// stateless across documents and safe for concurrent use.
type Extractor struct {
	opts       Options
	strategies []Strategy
}

// New builds the standard chain, most structured layout first.
func New(opts Options) *Extractor {
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultOptions().WindowSize
	}
	return &Extractor{
		opts: opts,
		strategies: []Strategy{
			&stackedStrategy{opts: opts},
			&blockStrategy{},
			&windowStrategy{opts: opts},
			&looseStrategy{opts: opts},
			&narrativeStrategy{opts: opts},
		},
	}
}

// Extract returns the first strategy's rows. An empty result means no
// transaction detail is available; the caller decides whether a bare
// before/after snapshot still makes a record.
func (e *Extractor) Extract(doc *textextract.Document) []models.TransactionRow {
	for _, s := range e.strategies {
		rows := s.Extract(doc)
		if len(rows) > 0 {
			log.Printf("[TxExtract] %d row(s) via %s strategy", len(rows), s.Name())
			return rows
		}
	}
	return nil
}

// rowFromParts assembles a TransactionRow from raw token strings. An
// unrecognized kind returns ok=false and the row is dropped.
func rowFromParts(kind, priceS, dateS, amountS string) (models.TransactionRow, bool) {
	var txType models.TxType
	switch kind {
	case "buy":
		txType = models.TxBuy
	case "sell":
		txType = models.TxSell
	case "transfer":
		txType = models.TxTransfer
	default:
		return models.TransactionRow{}, false
	}

	row := models.TransactionRow{Type: txType}
	if priceS != "" {
		row.Price = numparse.ParseNumber(priceS)
		row.HasPrice = true
	}
	if amountS != "" {
		row.Amount = numparse.ParseInt(amountS)
		row.HasAmount = true
	}
	if dateS != "" {
		row.RawDate = dateS
		if norm, ok := textextract.ParseDate(dateS); ok {
			row.Date = norm
		}
	}
	return row, true
}
