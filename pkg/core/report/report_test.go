package report

import (
	"strings"
	"testing"
	"time"

	"insider_filings/pkg/models"
)

func testNow() time.Time {
	return time.Date(2025, 8, 13, 10, 0, 0, 0, time.UTC)
}

func TestBuildCounts(t *testing.T) {
	records := []*models.FilingRecord{
		{Symbol: "AAAA.JK", HolderName: "Budi", TransactionType: models.TxBuy, TransactionValue: 1_000_000},
		{Symbol: "BBCA.JK", HolderName: "Sari", TransactionType: models.TxSell, TransactionValue: 5_000_000,
			AuditFlags: []models.AuditFlag{{Code: "price_deviation_market"}}},
		{Symbol: "CCCC.JK", SkipReason: "inconsistent_buy: after(5) < before(10)"},
	}
	notInserted := []models.Alert{
		{Code: "no_text_extracted", Severity: models.SeverityFatal},
	}

	s := Build(records, notInserted, testNow())
	if s.Processed != 4 || s.Inserted != 2 || s.Skipped != 2 {
		t.Errorf("counts = %d/%d/%d", s.Processed, s.Inserted, s.Skipped)
	}
	if s.FlagCounts["price_deviation_market"] != 1 {
		t.Errorf("flags = %v", s.FlagCounts)
	}
	if s.SkipReasons["no_text_extracted"] != 1 {
		t.Errorf("skip reasons = %v", s.SkipReasons)
	}
	// sorted by value, largest first
	if s.Notable[0].Symbol != "BBCA.JK" {
		t.Errorf("notable[0] = %s", s.Notable[0].Symbol)
	}
}

func TestMarkdownSections(t *testing.T) {
	records := []*models.FilingRecord{
		{Symbol: "AAAA.JK", HolderName: "Budi", TransactionType: models.TxBuy, TransactionValue: 1500},
	}
	md := Build(records, nil, testNow()).Markdown()

	for _, want := range []string{
		"# Insider Filings Run 2025-08-13",
		"Documents processed: 1",
		"| AAAA.JK | Budi | buy | 1500 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Skip Reasons") {
		t.Error("empty skip section rendered")
	}
}

func TestRenderHTML(t *testing.T) {
	s := Build([]*models.FilingRecord{{Symbol: "AAAA.JK"}}, nil, testNow())
	html, err := s.RenderHTML()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "<h1") {
		t.Errorf("html = %q", html)
	}
}
