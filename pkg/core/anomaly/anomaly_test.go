package anomaly

import (
	"testing"

	"insider_filings/pkg/core/config"
	"insider_filings/pkg/core/marketref"
	"insider_filings/pkg/models"
)

func newDetector() *Detector {
	return New(config.Default().Anomaly)
}

func row(price float64, amount int64, t models.TxType) models.TransactionRow {
	return models.TransactionRow{Type: t, Price: price, HasPrice: price > 0, Amount: amount, HasAmount: amount > 0}
}

func codes(flags []models.AuditFlag) map[string]int {
	m := map[string]int{}
	for _, f := range flags {
		m[f.Code]++
	}
	return m
}

func TestDocMedianPrice(t *testing.T) {
	rows := []models.TransactionRow{
		row(100, 10, models.TxBuy),
		row(200, 10, models.TxBuy),
		row(400, 10, models.TxSell),
		row(0, 10, models.TxBuy), // no price, ignored
	}
	m, ok := DocMedianPrice(rows)
	if !ok || m != 200 {
		t.Errorf("median = %v ok=%v, want 200", m, ok)
	}
	if _, ok := DocMedianPrice(nil); ok {
		t.Error("median of nothing")
	}
}

func TestWithinDocDeviation(t *testing.T) {
	// median is 1000; the 100 row sits at 0.1x, far below the 0.5x band
	rows := []models.TransactionRow{
		row(1000, 10, models.TxBuy),
		row(1000, 10, models.TxBuy),
		row(100, 10, models.TxBuy),
	}
	ref := &marketref.Reference{RefPrice: 1000, RefType: "close", NDays: 1, FreshnessDays: 1}
	flags := newDetector().CheckRows(rows, ref)
	c := codes(flags)
	if c["price_deviation_within_doc"] != 1 {
		t.Errorf("within-doc flags = %v", c)
	}
	// the same row is also 0.1x the market reference
	if c["price_deviation_market"] != 1 {
		t.Errorf("market flags = %v", c)
	}
	if c["stale_price"] != 0 || c["missing_price"] != 0 {
		t.Errorf("unexpected freshness flags: %v", c)
	}
}

func TestX10CandidateFlaggedNotRejected(t *testing.T) {
	rows := []models.TransactionRow{row(10000, 10, models.TxBuy)}
	ref := &marketref.Reference{RefPrice: 1000, RefType: "close", NDays: 1, FreshnessDays: 0}
	flags := newDetector().CheckRows(rows, ref)
	c := codes(flags)
	if c["possible_zero_missing"] != 1 {
		t.Fatalf("flags = %v", c)
	}
	for _, f := range flags {
		if f.Code == "possible_zero_missing" && f.Details["magnitude_label"] != "x10_candidate" {
			t.Errorf("label = %v", f.Details["magnitude_label"])
		}
	}
	// 10x also breaches the 1.4x market band
	if c["price_deviation_market"] != 1 {
		t.Errorf("flags = %v", c)
	}
}

func TestX100Candidate(t *testing.T) {
	d := newDetector()
	if label, ok := d.zeroMissing(100_000, 1000); !ok || label != "x100_candidate" {
		t.Errorf("zeroMissing = (%q, %v)", label, ok)
	}
	if _, ok := d.zeroMissing(30_000, 1000); ok {
		t.Error("30x is neither candidate band")
	}
}

func TestStaleAndMissingReference(t *testing.T) {
	rows := []models.TransactionRow{row(1000, 10, models.TxBuy)}

	stale := &marketref.Reference{RefPrice: 1000, RefType: "close", NDays: 1, FreshnessDays: 30}
	c := codes(newDetector().CheckRows(rows, stale))
	if c["stale_price"] != 1 {
		t.Errorf("stale flags = %v", c)
	}

	c = codes(newDetector().CheckRows(rows, nil))
	if c["missing_price"] != 1 {
		t.Errorf("missing flags = %v", c)
	}
}

func TestZeroMissingFallsBackToDocMedian(t *testing.T) {
	rows := []models.TransactionRow{
		row(1000, 10, models.TxBuy),
		row(1000, 10, models.TxBuy),
		row(10000, 10, models.TxBuy),
	}
	flags := newDetector().CheckRows(rows, nil)
	c := codes(flags)
	if c["possible_zero_missing"] != 1 {
		t.Errorf("flags = %v", c)
	}
}

func TestCheckPercentages(t *testing.T) {
	d := newDetector()

	// 1,000,000 of 100,000,000 shares = 1%; buying 2,000,000 adds 2pp
	info := &models.FilingInfo{
		HoldingBefore: 1_000_000,
		HoldingAfter:  3_000_000,
		PctBefore:     1.0,
		PctAfter:      3.0,
		Transactions:  []models.TransactionRow{row(100, 2_000_000, models.TxBuy)},
	}
	if flag, ok := d.CheckPercentages(info); ok {
		t.Errorf("consistent filing flagged: %+v", flag)
	}

	// document claims 5% after, model says 3%
	info.PctAfter = 5.0
	flag, ok := d.CheckPercentages(info)
	if !ok {
		t.Fatal("expected percent_discrepancy")
	}
	if flag.Code != "percent_discrepancy" {
		t.Errorf("code = %q", flag.Code)
	}
	if flag.Details["total_shares_model"] != 1e8 {
		t.Errorf("total shares = %v", flag.Details["total_shares_model"])
	}

	// no holdings/percentage pair: cannot infer, no flag
	if _, ok := d.CheckPercentages(&models.FilingInfo{PctBefore: 1, PctAfter: 2}); ok {
		t.Error("inference without holdings should not flag")
	}
}
