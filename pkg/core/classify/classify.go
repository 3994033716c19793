// Package classify decides the direction of a filing (buy/sell/transfer),
// validates it against the reported holdings, and derives the standardized
// tag set. Keyword banks cover both Indonesian and English phrasing.
package classify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"insider_filings/pkg/models"
)

// Keyword banks, checked in a fixed priority order: correction first, then
// sell before buy before transfer. "Penjualan" contains no buy keyword but
// "pembelian kembali" contains "beli", so order matters.
var (
	correctionKeywords = []string{"perbaikan", "koreksi", "ralat", "errata", "amendment"}
	sellKeywords       = []string{"jual", "penjualan", "sell", "divestasi", "divestment", "pengurangan", "reduksi", "disposal"}
	buyKeywords        = []string{"beli", "pembelian", "buy", "akumulasi", "investasi", "acquisition", "penambahan", "increase", "buyback", "buy back"}
	transferKeywords   = []string{"transfer", "pemindahan", "pengalihan", "konversi", "conversion", "hibah", "waris"}
)

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IsCorrection reports whether the document amends an earlier filing.
func IsCorrection(text string) bool {
	return containsAny(strings.ToLower(text), correctionKeywords)
}

// ClassifyType determines the document-level direction from its text, falling
// back to the before/after percentage delta when no keyword matches.
func ClassifyType(text string, pctBefore, pctAfter float64) models.TxType {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, correctionKeywords):
		return models.TxCorrection
	case containsAny(lower, sellKeywords):
		return models.TxSell
	case containsAny(lower, buyKeywords):
		return models.TxBuy
	case containsAny(lower, transferKeywords):
		return models.TxTransfer
	case pctAfter > pctBefore:
		return models.TxBuy
	case pctAfter < pctBefore:
		return models.TxSell
	}
	return models.TxNeutral
}

// InferDirection derives buy/sell/neutral from the holdings delta, preferring
// share counts over percentages (percentages are often rounded in documents).
func InferDirection(holdingBefore, holdingAfter int64, pctBefore, pctAfter float64) models.TxType {
	if holdingBefore != holdingAfter {
		if holdingAfter > holdingBefore {
			return models.TxBuy
		}
		return models.TxSell
	}
	if pctAfter > pctBefore {
		return models.TxBuy
	}
	if pctAfter < pctBefore {
		return models.TxSell
	}
	return models.TxNeutral
}

// ValidateDirection checks the stated direction against the before/after
// percentages. The reason string names the exact inconsistency so skip logs
// stay actionable; a bare false would hide which side contradicted.
func ValidateDirection(before, after float64, hasBefore, hasAfter bool, txType models.TxType, eps float64) (bool, string) {
	if !hasBefore || !hasAfter {
		return false, "missing_before_or_after"
	}
	switch txType {
	case models.TxBuy:
		if after+eps < before {
			return false, fmt.Sprintf("inconsistent_buy: after(%s) < before(%s)", fmtPct(after), fmtPct(before))
		}
	case models.TxSell:
		if after > before+eps {
			return false, fmt.Sprintf("inconsistent_sell: after(%s) > before(%s)", fmtPct(after), fmtPct(before))
		}
	}
	return true, ""
}

func fmtPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CrossesMajority reports a 50% ownership crossing in either direction.
// Crossing downward is as control-relevant as crossing upward.
func CrossesMajority(before, after float64) bool {
	return (before < 50 && after >= 50) || (before >= 50 && after < 50)
}

// MismatchFlag compares the document's stated direction with the one inferred
// from holdings. A disagreement is observability-only: the flag carries both
// values and the deltas, and never blocks insertion.
func MismatchFlag(docType, inferred models.TxType, holdingBefore, holdingAfter int64, pctBefore, pctAfter float64) (models.AuditFlag, bool) {
	d, i := docType, inferred
	if (d != models.TxBuy && d != models.TxSell) || (i != models.TxBuy && i != models.TxSell) || d == i {
		return models.AuditFlag{}, false
	}
	return models.AuditFlag{
		Code:  "mismatch_transaction_type",
		Scope: "tx",
		Message: fmt.Sprintf("Document says '%s', but holdings/percentages imply '%s'.",
			d, i),
		Details: map[string]interface{}{
			"document_type":           string(d),
			"inferred_type":           string(i),
			"holding_before":          holdingBefore,
			"holding_after":           holdingAfter,
			"share_percentage_before": pctBefore,
			"share_percentage_after":  pctAfter,
		},
	}, true
}

// Flags are purpose signals detected in the document body.
type Flags struct {
	MESOP       bool
	FreeFloat   bool
	Inheritance bool
	Transfer    bool
}

// DetectFlags scans the body text for purpose hints that become reason tags.
func DetectFlags(text string) Flags {
	lower := strings.ToLower(text)
	return Flags{
		MESOP: strings.Contains(lower, "mesop") ||
			strings.Contains(lower, "employee stock option") ||
			strings.Contains(lower, "opsi saham karyawan"),
		FreeFloat: strings.Contains(lower, "free float") ||
			strings.Contains(lower, "free-float") ||
			strings.Contains(lower, "saham beredar minimum"),
		Inheritance: strings.Contains(lower, "waris") ||
			strings.Contains(lower, "hibah") ||
			strings.Contains(lower, "inheritance"),
		Transfer: strings.Contains(lower, "pengalihan") ||
			strings.Contains(lower, "share transfer"),
	}
}

// tagWhitelist is the fixed 9-tag policy: two sentiments, six reasons, one
// control tag. Anything else is dropped on output.
var tagWhitelist = map[string]bool{
	"bullish":                true,
	"bearish":                true,
	"takeover":               true,
	"investment":             true,
	"divestment":             true,
	"free-float-requirement": true,
	"MESOP":                  true,
	"inheritance":            true,
	"share-transfer":         true,
}

// ComputeTags derives the sorted, de-duplicated tag set for a filing.
// The takeover tag depends only on the 50% crossing, never on direction.
func ComputeTags(rows []models.TransactionRow, pctBefore, pctAfter float64, flags Flags) []string {
	set := map[string]bool{}

	hasBuy, hasSell, hasTransfer := false, false, false
	for _, r := range rows {
		switch r.Type {
		case models.TxBuy:
			hasBuy = true
		case models.TxSell:
			hasSell = true
		case models.TxTransfer:
			hasTransfer = true
		}
	}
	if !hasBuy && !hasSell {
		if pctAfter > pctBefore {
			hasBuy = true
		} else if pctAfter < pctBefore {
			hasSell = true
		}
	}

	if hasBuy {
		set["bullish"] = true
		set["investment"] = true
	}
	if hasSell {
		set["bearish"] = true
		set["divestment"] = true
	}
	if hasTransfer || flags.Transfer {
		set["share-transfer"] = true
	}
	if flags.MESOP {
		set["MESOP"] = true
	}
	if flags.FreeFloat {
		set["free-float-requirement"] = true
	}
	if flags.Inheritance {
		set["inheritance"] = true
	}
	if CrossesMajority(pctBefore, pctAfter) {
		set["takeover"] = true
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		if tagWhitelist[t] {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
