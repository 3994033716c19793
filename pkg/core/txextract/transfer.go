package txextract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"insider_filings/pkg/core/numparse"
	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// ContainsTransfer reports whether the document mentions an off-market
// transfer ("pengalihan") outside the transaction-type header itself.
func ContainsTransfer(doc *textextract.Document) bool {
	for _, line := range doc.Lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "jenis transaksi") || strings.Contains(lower, "transaction type") {
			continue
		}
		if strings.Contains(lower, "pengalihan") {
			return true
		}
	}
	return false
}

// ExtractTransfers pulls rudimentary transfer rows from narrative lines.
// Each row carries a deterministic pairing UID derived from
// (ticker, date, amount, price) so the two filings reporting the same
// transfer, one per side, collapse to one identifier downstream.
func ExtractTransfers(doc *textextract.Document, ticker string, opts Options) []models.TransactionRow {
	if ticker == "" {
		ticker = "UNKNOWN"
	}
	var rows []models.TransactionRow
	for _, line := range doc.Lines {
		if !strings.Contains(strings.ToLower(line), "pengalihan") {
			continue
		}

		var price float64
		priceS, hasPrice := PickPrice(line, opts.PriceCeiling)
		if hasPrice {
			price = numparse.ParseNumber(priceS)
		}

		amountS, ok := PickAmount(line, excludeSpans(line, priceS))
		if !ok {
			continue
		}
		amount := numparse.ParseInt(amountS)

		date := ""
		if norm, ok := textextract.ParseDate(line); ok {
			date = norm
		}

		rows = append(rows, models.TransactionRow{
			Type:        models.TxTransfer,
			Price:       price,
			HasPrice:    hasPrice,
			Amount:      amount,
			HasAmount:   true,
			Date:        date,
			RawDate:     date,
			TransferUID: TransferUID(ticker, date, amount, price),
		})
	}
	return rows
}

// TransferUID is a stable name-based UUID over the transfer identity tuple.
func TransferUID(ticker, date string, amount int64, price float64) string {
	seed := fmt.Sprintf("%s-%s-%d-%s", ticker, date, amount,
		strconv.FormatFloat(price, 'f', -1, 64))
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(seed)).String()
}
