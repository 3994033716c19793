// Package record turns an extracted FilingInfo into the canonical
// FilingRecord handed to storage. The builder is pure: the same filing,
// directory snapshot, and price snapshot always produce the same record.
package record

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"

	"insider_filings/pkg/core/classify"
	"insider_filings/pkg/core/company"
	"insider_filings/pkg/core/marketref"
	"insider_filings/pkg/core/numparse"
	"insider_filings/pkg/models"
)

const symbolSuffix = ".JK"

// Builder aggregates filings against the read-only batch snapshots.
type Builder struct {
	Directory *company.Directory
	Prices    *marketref.Snapshot
}

// Build assembles the output record. meta may be nil when the announcement
// listing has no entry for this document; flags carry the purpose signals
// detected in the body text.
func (b *Builder) Build(info *models.FilingInfo, meta *models.AnnouncementMeta, flags classify.Flags) *models.FilingRecord {
	symbolOut := ensureSuffix(info.Symbol)

	direction, legs := chooseDirection(info.Transactions)
	if direction == models.TxUnknown {
		if info.DeclaredType == models.TxBuy || info.DeclaredType == models.TxSell ||
			info.DeclaredType == models.TxTransfer || info.DeclaredType == models.TxCorrection {
			direction = info.DeclaredType
		} else {
			direction = classify.InferDirection(info.HoldingBefore, info.HoldingAfter, info.PctBefore, info.PctAfter)
		}
	}

	// weighted price over buy/sell legs where both sides are positive
	var sumValue float64
	var sumAmount, legAmount int64
	for _, leg := range legs {
		if leg.HasAmount {
			legAmount += leg.Amount
		}
		if leg.HasPrice && leg.HasAmount && leg.Price > 0 && leg.Amount > 0 {
			sumValue += leg.Price * float64(leg.Amount)
			sumAmount += leg.Amount
		}
	}
	price := 0.0
	if sumAmount > 0 {
		price = sumValue / float64(sumAmount)
	}
	if price == 0 && b.Prices != nil && info.Symbol != "" {
		// filings without a stated price fall back to the last close
		if close, ok := b.Prices.LastClose(info.Symbol); ok {
			price = close
		}
	}

	// transfers are tracked apart from the buy/sell aggregation
	var amountTransferred int64
	var valueTransferred float64
	for _, r := range info.Transactions {
		if r.Type != models.TxTransfer {
			continue
		}
		if r.HasAmount {
			amountTransferred += r.Amount
		}
		valueTransferred += r.Value()
	}

	// amount: the holdings delta is authoritative when both sides exist
	amount := legAmount
	if info.HoldingBefore != 0 || info.HoldingAfter != 0 {
		delta := info.HoldingAfter - info.HoldingBefore
		if delta < 0 {
			delta = -delta
		}
		if delta > 0 {
			amount = delta
		}
	}

	transactionValue := 0.0
	for _, leg := range legs {
		transactionValue += leg.Value()
	}

	rec := &models.FilingRecord{
		Symbol:          symbolOut,
		TransactionType: direction,
		HolderName:      info.HolderName,
		HolderType:      info.HolderType,

		HoldingBefore: info.HoldingBefore,
		HoldingAfter:  info.HoldingAfter,
		PctBefore:     numparse.FloorPct5(info.PctBefore),
		PctAfter:      numparse.FloorPct5(info.PctAfter),
		PctTransacted: numparse.FloorPct5(info.PctAfter - info.PctBefore),

		Price:             price,
		AmountTransacted:  amount,
		TransactionValue:  transactionValue,
		AmountTransferred: amountTransferred,
		ValueTransferred:  valueTransferred,

		Transactions: info.Transactions,
		Tags: classify.ComputeTags(info.Transactions, info.PctBefore, info.PctAfter, flags),

		SourceFile: info.Source,
		SkipReason: info.SkipReason,
	}

	if b.Directory != nil && info.Symbol != "" {
		if entry, ok := b.Directory.Entry(info.Symbol); ok {
			rec.Sector = Slug(entry.Sector)
			rec.SubSector = Slug(entry.SubSector)
		}
	}

	if meta != nil {
		rec.SourceURL = meta.URL
		if !meta.PublishedAt.IsZero() {
			rec.Timestamp = meta.PublishedAt.Format("2006-01-02T15:04:05Z07:00")
		}
	}

	rec.UID = UID(rec.Symbol, rec.HolderName, rec.AmountTransacted, rec.Timestamp, rec.SourceFile)
	return rec
}

// chooseDirection picks the dominant side by total leg value; a one-sided
// document wins by presence. Unknown means the rows alone cannot decide.
// Transfer rows never count as legs, so a transfer-only document aggregates
// nothing into price/value.
func chooseDirection(rows []models.TransactionRow) (models.TxType, []models.TransactionRow) {
	var buys, sells, market []models.TransactionRow
	var buyValue, sellValue float64
	for _, r := range rows {
		switch r.Type {
		case models.TxBuy:
			buys = append(buys, r)
			buyValue += r.Value()
		case models.TxSell:
			sells = append(sells, r)
			sellValue += r.Value()
		}
		if r.Type != models.TxTransfer {
			market = append(market, r)
		}
	}
	switch {
	case buyValue > sellValue && buyValue > 0:
		return models.TxBuy, buys
	case sellValue > buyValue && sellValue > 0:
		return models.TxSell, sells
	case len(buys) > 0 && len(sells) == 0:
		return models.TxBuy, buys
	case len(sells) > 0 && len(buys) == 0:
		return models.TxSell, sells
	}
	return models.TxUnknown, market
}

// UID is a stable 20-hex identity over the record's natural key. Re-running
// a batch over the same inputs must produce the same UIDs for dedup.
func UID(symbol, holder string, amount int64, timestamp, source string) string {
	key := struct {
		Amount int64  `json:"amount"`
		Holder string `json:"holder"`
		Src    string `json:"src"`
		Symbol string `json:"symbol"`
		Ts     string `json:"ts"`
	}{amount, holder, source, symbol, timestamp}
	data, _ := json.Marshal(key)
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])[:20]
}

var slugStrip = regexp.MustCompile(`[^a-z0-9 -]`)
var slugSpace = regexp.MustCompile(`[\s_/]+`)
var slugDash = regexp.MustCompile(`-{2,}`)

// Slug kebab-cases a sector label: "Consumer Non-Cyclicals" ->
// "consumer-non-cyclicals".
func Slug(s string) string {
	if s == "" {
		return ""
	}
	out := strings.ToLower(strings.TrimSpace(company.StripDiacritics(s)))
	out = slugSpace.ReplaceAllString(out, "-")
	out = slugStrip.ReplaceAllString(out, "")
	out = slugDash.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

func ensureSuffix(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}
	if strings.HasSuffix(s, symbolSuffix) {
		return s
	}
	return s + symbolSuffix
}
