package record

import (
	"testing"
	"time"

	"insider_filings/pkg/core/classify"
	"insider_filings/pkg/core/company"
	"insider_filings/pkg/models"
)

func testBuilder() *Builder {
	return &Builder{
		Directory: company.NewDirectory([]models.CompanyEntry{
			{Symbol: "AAAA.JK", CompanyName: "PT Alpha Beta Tbk", Sector: "Consumer Non-Cyclicals", SubSector: "Food & Beverage"},
		}),
	}
}

func buyRow(price float64, amount int64) models.TransactionRow {
	return models.TransactionRow{Type: models.TxBuy, Price: price, HasPrice: true, Amount: amount, HasAmount: true}
}

func TestWeightedPriceExcludesTransfers(t *testing.T) {
	info := &models.FilingInfo{
		Symbol: "AAAA",
		Transactions: []models.TransactionRow{
			buyRow(100, 10),
			buyRow(200, 10),
			{Type: models.TxTransfer, Amount: 50, HasAmount: true, Price: 999, HasPrice: true},
		},
	}
	rec := testBuilder().Build(info, nil, classify.Flags{})

	if rec.Price != 150 {
		t.Errorf("weighted price = %v, want 150", rec.Price)
	}
	if rec.TransactionValue != 3000 {
		t.Errorf("transaction value = %v, want 3000", rec.TransactionValue)
	}
	if rec.AmountTransacted != 20 {
		t.Errorf("amount = %v, want 20", rec.AmountTransacted)
	}
	if rec.AmountTransferred != 50 {
		t.Errorf("transferred = %v, want 50", rec.AmountTransferred)
	}
	if rec.ValueTransferred != 999*50 {
		t.Errorf("transferred value = %v", rec.ValueTransferred)
	}
	if rec.TransactionType != models.TxBuy {
		t.Errorf("type = %s", rec.TransactionType)
	}
}

func TestTransferOnlyDocument(t *testing.T) {
	info := &models.FilingInfo{
		Symbol:       "AAAA",
		DeclaredType: models.TxTransfer,
		Transactions: []models.TransactionRow{
			{Type: models.TxTransfer, Price: 999, HasPrice: true, Amount: 50, HasAmount: true},
		},
	}
	rec := testBuilder().Build(info, nil, classify.Flags{})

	// transfer rows stay out of the buy/sell aggregation entirely
	if rec.Price != 0 {
		t.Errorf("price = %v, want 0", rec.Price)
	}
	if rec.TransactionValue != 0 {
		t.Errorf("transaction value = %v, want 0", rec.TransactionValue)
	}
	if rec.AmountTransacted != 0 {
		t.Errorf("amount = %v, want 0", rec.AmountTransacted)
	}
	if rec.AmountTransferred != 50 || rec.ValueTransferred != 999*50 {
		t.Errorf("transferred = %v / %v", rec.AmountTransferred, rec.ValueTransferred)
	}
	if rec.TransactionType != models.TxTransfer {
		t.Errorf("type = %s", rec.TransactionType)
	}
}

func TestSymbolSuffixAndSectorSlugs(t *testing.T) {
	info := &models.FilingInfo{Symbol: "AAAA", Transactions: []models.TransactionRow{buyRow(100, 10)}}
	rec := testBuilder().Build(info, nil, classify.Flags{})
	if rec.Symbol != "AAAA.JK" {
		t.Errorf("symbol = %q", rec.Symbol)
	}
	if rec.Sector != "consumer-non-cyclicals" {
		t.Errorf("sector = %q", rec.Sector)
	}
	if rec.SubSector != "food-beverage" {
		t.Errorf("sub sector = %q", rec.SubSector)
	}
}

func TestHoldingsDeltaBeatsRowSum(t *testing.T) {
	info := &models.FilingInfo{
		Symbol:        "AAAA",
		HoldingBefore: 1_000_000,
		HoldingAfter:  1_800_000,
		Transactions:  []models.TransactionRow{buyRow(100, 10)},
	}
	rec := testBuilder().Build(info, nil, classify.Flags{})
	if rec.AmountTransacted != 800_000 {
		t.Errorf("amount = %v, want holdings delta", rec.AmountTransacted)
	}
}

func TestPercentagesFloored(t *testing.T) {
	info := &models.FilingInfo{
		Symbol:    "AAAA",
		PctBefore: 0.2999999,
		PctAfter:  0.3111119,
	}
	rec := testBuilder().Build(info, nil, classify.Flags{})
	if rec.PctBefore != 0.29999 {
		t.Errorf("pct before = %v", rec.PctBefore)
	}
	if rec.PctAfter != 0.31111 {
		t.Errorf("pct after = %v", rec.PctAfter)
	}
}

func TestDirectionFallbacks(t *testing.T) {
	// no rows, declared type wins
	info := &models.FilingInfo{Symbol: "AAAA", DeclaredType: models.TxSell}
	if rec := testBuilder().Build(info, nil, classify.Flags{}); rec.TransactionType != models.TxSell {
		t.Errorf("declared type lost: %s", rec.TransactionType)
	}

	// no rows, no declared type: infer from holdings
	info = &models.FilingInfo{Symbol: "AAAA", HoldingBefore: 100, HoldingAfter: 200}
	if rec := testBuilder().Build(info, nil, classify.Flags{}); rec.TransactionType != models.TxBuy {
		t.Errorf("inferred type = %s", rec.TransactionType)
	}

	// mixed rows: larger value side wins
	info = &models.FilingInfo{
		Symbol: "AAAA",
		Transactions: []models.TransactionRow{
			buyRow(100, 10),
			{Type: models.TxSell, Price: 100, HasPrice: true, Amount: 100, HasAmount: true},
		},
	}
	if rec := testBuilder().Build(info, nil, classify.Flags{}); rec.TransactionType != models.TxSell {
		t.Errorf("dominant side = %s", rec.TransactionType)
	}
}

func TestUIDStability(t *testing.T) {
	a := UID("AAAA.JK", "Budi Santoso", 800000, "2025-08-13T10:00:00Z", "doc.pdf")
	b := UID("AAAA.JK", "Budi Santoso", 800000, "2025-08-13T10:00:00Z", "doc.pdf")
	if a != b {
		t.Error("UID not deterministic")
	}
	if len(a) != 20 {
		t.Errorf("UID length = %d, want 20", len(a))
	}
	if a == UID("AAAA.JK", "Budi Santoso", 800001, "2025-08-13T10:00:00Z", "doc.pdf") {
		t.Error("different amounts must not collide")
	}
}

func TestAnnouncementBackfill(t *testing.T) {
	meta := &models.AnnouncementMeta{
		Filename:    "doc.pdf",
		URL:         "https://idx.example/announce/doc.pdf",
		PublishedAt: time.Date(2025, 8, 13, 10, 0, 0, 0, time.UTC),
	}
	info := &models.FilingInfo{Symbol: "AAAA", Source: "doc.pdf"}
	rec := testBuilder().Build(info, meta, classify.Flags{})
	if rec.SourceURL != meta.URL {
		t.Errorf("url = %q", rec.SourceURL)
	}
	if rec.Timestamp != "2025-08-13T10:00:00Z" {
		t.Errorf("timestamp = %q", rec.Timestamp)
	}
}

func TestBuildIsPure(t *testing.T) {
	info := &models.FilingInfo{
		Symbol:        "AAAA",
		HolderName:    "Budi Santoso",
		HoldingBefore: 100,
		HoldingAfter:  200,
		Transactions:  []models.TransactionRow{buyRow(100, 100)},
	}
	r1 := testBuilder().Build(info, nil, classify.Flags{})
	r2 := testBuilder().Build(info, nil, classify.Flags{})
	if r1.UID != r2.UID || r1.Price != r2.Price || r1.AmountTransacted != r2.AmountTransacted {
		t.Errorf("builder not deterministic: %+v vs %+v", r1, r2)
	}
}
