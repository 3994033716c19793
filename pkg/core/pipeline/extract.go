package pipeline

import (
	"strings"

	"insider_filings/pkg/core/classify"
	"insider_filings/pkg/core/company"
	"insider_filings/pkg/core/config"
	"insider_filings/pkg/core/numparse"
	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/core/txextract"
	"insider_filings/pkg/models"
)

// Alert codes for documents that need attention. The first and last are
// fatal skip reasons; a missing symbol rides along as needs-review.
const (
	SkipNoText        = "no_text_extracted"
	CodeSymbolMissing = "symbol_missing"
	SkipInvalidHolder = "invalid_holder_name"
)

// ExtractFiling pulls the labelled fields and transaction rows out of one
// document. The returned info carries a SkipReason when the document cannot
// become a record; it is never nil.
func ExtractFiling(doc *textextract.Document, filename string, dir *company.Directory, cfg config.Config) *models.FilingInfo {
	info := &models.FilingInfo{Source: filename}
	text := doc.Text()

	// Issuer. "Issuer Name" usually holds the ticker code; the legal name
	// sits under "Name of Share of Public Company". Labels are swapped on
	// some documents, so both feed resolution.
	issuerCode := firstNonEmpty(
		doc.FindTableValue("Issuer Name"),
		doc.FindValueInLine("Issuer Name"),
	)
	issuerRaw := firstNonEmpty(
		doc.FindTableValue("Name of Share of Public Company"),
		doc.FindValueInLine("Name of Share of Public Company"),
	)
	info.CompanyNameRaw = issuerRaw

	// An unresolved symbol does not drop the document: the record is built
	// anyway and marked for review, with suggestion candidates on the alert.
	sym, name := resolveIssuer(dir, issuerCode, issuerRaw, cfg.Resolver.IssuerMinScore)
	if sym == "" {
		info.ParseWarnings = append(info.ParseWarnings, "symbol not resolved from issuer name")
		info.CompanyName = company.PrettyName(issuerRaw)
	} else {
		info.Symbol = sym
		info.CompanyName = name
	}

	// Holder.
	holderRaw := firstNonEmpty(
		doc.FindTableValue("Name of Shareholder"),
		doc.FindValueInLine("Name of Shareholder"),
	)
	info.HolderNameRaw = holderRaw
	info.HolderType = company.ClassifyHolderType(holderRaw)
	if info.HolderType == "institution" {
		if res, ok := dir.Resolve(holderRaw, true, cfg.Resolver.HolderMinScore); ok {
			info.HolderName = res.Name
			info.HolderSymbol = res.Symbol
		} else {
			info.HolderName = company.PrettyName(holderRaw)
		}
	} else {
		info.HolderName = company.CleanHolderName(holderRaw)
	}
	if !company.IsValidHolder(info.HolderName) {
		info.SkipReason = SkipInvalidHolder
		info.ParseWarnings = append(info.ParseWarnings, "invalid holder name")
		return info
	}

	// Holdings and percentages.
	beforeS := doc.FindNumberAfterKeyword("Number of shares owned before the transaction")
	afterS := doc.FindNumberAfterKeyword("Number of shares owned after the transaction")
	pctBeforeS := doc.FindPercentageAfterKeyword("Percentage of ownership before the transaction")
	pctAfterS := doc.FindPercentageAfterKeyword("Percentage of ownership after the transaction")

	info.HoldingBefore = numparse.ParseInt(beforeS)
	info.HoldingAfter = numparse.ParseInt(afterS)
	info.PctBefore = numparse.ParsePercentage(pctBeforeS)
	info.PctAfter = numparse.ParsePercentage(pctAfterS)

	info.Purpose = firstNonEmpty(
		doc.FindTableValue("Purposes of transaction"),
		doc.FindValueInLine("Purposes of transaction"),
	)
	info.OwnershipStatus = firstNonEmpty(
		doc.FindTableValue("Share Ownership Status"),
		doc.FindValueInLine("Share Ownership Status"),
	)

	// Declared type, itemized rows, transfers.
	if dt, ok := txextract.ScanDeclaredType(doc); ok {
		info.DeclaredType = dt
	}
	opts := extractOptions(cfg)
	info.Transactions = txextract.New(opts).Extract(doc)
	if txextract.ContainsTransfer(doc) {
		info.Transactions = append(info.Transactions, txextract.ExtractTransfers(doc, info.Symbol, opts)...)
	}

	// Direction: the document's own wording, checked against the holdings
	// movement. An impossible combination is not recoverable.
	docType := classify.ClassifyType(text, info.PctBefore, info.PctAfter)
	if (docType == models.TxBuy || docType == models.TxSell) && pctBeforeS != "" && pctAfterS != "" {
		ok, reason := classify.ValidateDirection(
			info.PctBefore, info.PctAfter, true, true,
			docType, cfg.Extract.DirectionEpsilon)
		if !ok {
			info.SkipReason = reason
			return info
		}
	}
	if info.DeclaredType == "" || info.DeclaredType == models.TxUnknown {
		info.DeclaredType = docType
	}
	return info
}

func extractOptions(cfg config.Config) txextract.Options {
	return txextract.Options{
		PriceCeiling:     cfg.Extract.PriceCeiling,
		NarrativeFloor:   cfg.Extract.NarrativeFloor,
		NarrativeCeiling: cfg.Extract.NarrativeCeiling,
		WindowSize:       cfg.Extract.WindowSize,
	}
}

// resolveIssuer tries the ticker code first, then the literal name as a
// ticker, then fuzzy name resolution.
func resolveIssuer(dir *company.Directory, code, raw string, minScore float64) (string, string) {
	for _, cand := range []string{code, raw} {
		token := strings.ToUpper(strings.TrimSpace(cand))
		if token != "" && dir.IsKnownSymbol(token) {
			token = strings.TrimSuffix(token, ".JK")
			return token, dir.CanonicalName(token)
		}
	}
	if raw != "" {
		if res, ok := dir.Resolve(raw, true, minScore); ok && res.Symbol != "" {
			return res.Symbol, res.Name
		}
	}
	return "", ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
