// Package anomaly runs the price and percentage sanity checks. Every check
// is additive: flags attach to the record for human review, none of them
// reject it. Documents with suspicious but plausible numbers must survive to
// storage so reviewers see them.
package anomaly

import (
	"fmt"
	"sort"

	"insider_filings/pkg/core/config"
	"insider_filings/pkg/core/marketref"
	"insider_filings/pkg/models"
)

// Detector holds the configured bands.
type Detector struct {
	cfg config.Anomaly
}

func New(cfg config.Anomaly) *Detector {
	return &Detector{cfg: cfg}
}

// DocMedianPrice is the median over all positive row prices in one document.
func DocMedianPrice(rows []models.TransactionRow) (float64, bool) {
	var prices []float64
	for _, r := range rows {
		if r.HasPrice && r.Price > 0 {
			prices = append(prices, r.Price)
		}
	}
	if len(prices) == 0 {
		return 0, false
	}
	sort.Float64s(prices)
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2], true
	}
	return (prices[n/2-1] + prices[n/2]) / 2, true
}

// SuggestRange is the plausible price band around a reference, attached to
// flags so a reviewer sees what value was expected.
func (d *Detector) SuggestRange(ref float64) map[string]float64 {
	if ref <= 0 {
		return nil
	}
	delta := ref * d.cfg.SuggestPriceRatio
	lo := ref - delta
	if lo < 0 {
		lo = 0
	}
	return map[string]float64{"min": lo, "max": ref + delta}
}

// zeroMissing labels a ratio that looks like a transcription dropped one or
// two zeros from the reference-scale value.
func (d *Detector) zeroMissing(price, ref float64) (string, bool) {
	if ref == 0 {
		return "", false
	}
	r := price / ref
	if r < 0 {
		r = -r
	}
	switch {
	case r >= d.cfg.ZeroMissingX10Min && r <= d.cfg.ZeroMissingX10Max:
		return "x10_candidate", true
	case r >= d.cfg.ZeroMissingX100Min && r <= d.cfg.ZeroMissingX100Max:
		return "x100_candidate", true
	}
	return "", false
}

// CheckRows runs the three price checks over every row. ref is nil when the
// symbol has no market data; refOK distinguishes "no data" from "stale data"
// and both conditions produce their own flag rather than a silent skip.
func (d *Detector) CheckRows(rows []models.TransactionRow, ref *marketref.Reference) []models.AuditFlag {
	var flags []models.AuditFlag

	docMedian, hasMedian := DocMedianPrice(rows)

	refUsable := ref != nil && ref.RefPrice > 0
	if refUsable && ref.FreshnessDays >= 0 && ref.FreshnessDays > d.cfg.PriceLookbackDays {
		flags = append(flags, models.AuditFlag{
			Code:    "stale_price",
			Scope:   "tx",
			Message: fmt.Sprintf("Market reference is %d day(s) old (freshness window %d days)", ref.FreshnessDays, d.cfg.PriceLookbackDays),
			Details: map[string]interface{}{"market_ref": *ref},
		})
	}
	if !refUsable {
		flags = append(flags, models.AuditFlag{
			Code:    "missing_price",
			Scope:   "tx",
			Message: "No market reference price available for this symbol",
		})
	}

	for _, row := range rows {
		if !row.HasPrice || row.Price <= 0 {
			continue
		}
		price := row.Price

		if hasMedian && docMedian > 0 {
			r := price / docMedian
			if r < d.cfg.WithinDocRatioLow || r > d.cfg.WithinDocRatioHigh {
				flags = append(flags, models.AuditFlag{
					Code:  "price_deviation_within_doc",
					Scope: "row",
					Message: fmt.Sprintf("Price deviates vs doc-median by ratio %.3f (thresholds %g-%g)",
						r, d.cfg.WithinDocRatioLow, d.cfg.WithinDocRatioHigh),
					Details: map[string]interface{}{
						"price":               price,
						"doc_median_price":    docMedian,
						"ratio":               r,
						"suggest_price_range": d.SuggestRange(docMedian),
					},
				})
			}
		}

		if refUsable {
			r := price / ref.RefPrice
			if r < d.cfg.MarketRatioLow || r > d.cfg.MarketRatioHigh {
				flags = append(flags, models.AuditFlag{
					Code:  "price_deviation_market",
					Scope: "row",
					Message: fmt.Sprintf("Price deviates vs market-ref by ratio %.3f (thresholds %g-%g)",
						r, d.cfg.MarketRatioLow, d.cfg.MarketRatioHigh),
					Details: map[string]interface{}{
						"price":               price,
						"market_ref":          *ref,
						"ratio":               r,
						"suggest_price_range": d.SuggestRange(ref.RefPrice),
					},
				})
			}
			if label, ok := d.zeroMissing(price, ref.RefPrice); ok {
				flags = append(flags, models.AuditFlag{
					Code:    "possible_zero_missing",
					Scope:   "row",
					Message: fmt.Sprintf("Price magnitude anomaly vs market-ref (%s)", label),
					Details: map[string]interface{}{
						"price":           price,
						"market_ref":      *ref,
						"ratio":           r,
						"magnitude_label": label,
					},
				})
			}
		} else if hasMedian && docMedian > 0 {
			if label, ok := d.zeroMissing(price, docMedian); ok {
				flags = append(flags, models.AuditFlag{
					Code:    "possible_zero_missing",
					Scope:   "row",
					Message: fmt.Sprintf("Price magnitude anomaly vs doc-median (%s)", label),
					Details: map[string]interface{}{
						"price":            price,
						"doc_median_price": docMedian,
						"ratio":            price / docMedian,
						"magnitude_label":  label,
					},
				})
			}
		}
	}
	return flags
}

// CheckPercentages recomputes the after-percentage from inferred total shares
// and the signed row amounts, and flags a discrepancy beyond the tolerance.
// The document's own values are never overridden.
func (d *Detector) CheckPercentages(info *models.FilingInfo) (models.AuditFlag, bool) {
	totalShares := inferTotalShares(info)
	if totalShares <= 0 {
		return models.AuditFlag{}, false
	}

	signed := 0.0
	for _, r := range info.Transactions {
		if !r.HasAmount {
			continue
		}
		switch r.Type {
		case models.TxBuy:
			signed += float64(r.Amount)
		case models.TxSell:
			signed -= float64(r.Amount)
		}
	}

	deltaPP := signed / totalShares * 100
	modelAfter := info.PctBefore + deltaPP
	discrepancy := modelAfter - info.PctAfter
	if discrepancy < 0 {
		discrepancy = -discrepancy
	}
	if discrepancy <= d.cfg.PercentTolPP {
		return models.AuditFlag{}, false
	}
	return models.AuditFlag{
		Code:  "percent_discrepancy",
		Scope: "tx",
		Message: fmt.Sprintf("Reported after-percentage differs from model by %.4fpp (tolerance %.2fpp)",
			discrepancy, d.cfg.PercentTolPP),
		Details: map[string]interface{}{
			"total_shares_model":      totalShares,
			"delta_pp_model":          deltaPP,
			"pp_after_model":          modelAfter,
			"share_percentage_after":  info.PctAfter,
			"share_percentage_before": info.PctBefore,
			"discrepancy_pp":          discrepancy,
		},
	}, true
}

// inferTotalShares derives issued shares from a holdings/percentage pair,
// preferring the before side.
func inferTotalShares(info *models.FilingInfo) float64 {
	if info.HoldingBefore > 0 && info.PctBefore > 0 {
		return float64(info.HoldingBefore) / (info.PctBefore / 100)
	}
	if info.HoldingAfter > 0 && info.PctAfter > 0 {
		return float64(info.HoldingAfter) / (info.PctAfter / 100)
	}
	return 0
}
