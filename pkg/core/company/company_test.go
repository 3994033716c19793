package company

import (
	"os"
	"path/filepath"
	"testing"

	"insider_filings/pkg/models"
)

func testDirectory() *Directory {
	return NewDirectory([]models.CompanyEntry{
		{Symbol: "AAAA.JK", CompanyName: "PT ALPHA BETA TBK", Sector: "Financials"},
		{Symbol: "BBCA.JK", CompanyName: "PT Bank Central Asia Tbk"},
		{Symbol: "GGRM.JK", CompanyName: "PT Gudang Garam Tbk"},
		{Symbol: "TLKM.JK", CompanyName: "PT Telkom Indonesia (Persero) Tbk"},
	})
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"PT Alpha Beta Tbk", "ALPHA BETA"},
		{"PT ALPHA BETA TBK", "ALPHA BETA"},
		{"PT Telkom Indonesia (Persero) Tbk", "TELKOM INDONESIA"},
		{"Alpha & Beta", "ALPHA AND BETA"},
		{"Perseroan Terbatas Gudang Garam", "GUDANG GARAM"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveExactAfterSuffixStripping(t *testing.T) {
	d := testDirectory()
	res, ok := d.Resolve("PT Alpha Beta Tbk", true, 85)
	if !ok {
		t.Fatal("expected resolution")
	}
	if res.Symbol != "AAAA" {
		t.Errorf("symbol = %q, want AAAA", res.Symbol)
	}
	if res.Score < 99 {
		t.Errorf("expected near-perfect score, got %v", res.Score)
	}
	if res.Fuzzy {
		t.Error("exact key match should not be marked fuzzy")
	}
}

func TestResolveFuzzy(t *testing.T) {
	d := testDirectory()
	// OCR drift: one word slightly mangled
	res, ok := d.Resolve("PT Bank Centrl Asia Tbk", true, 85)
	if !ok {
		t.Fatalf("expected fuzzy resolution, got %+v", res)
	}
	if res.Symbol != "BBCA" {
		t.Errorf("symbol = %q, want BBCA", res.Symbol)
	}
	if !res.Fuzzy {
		t.Error("expected fuzzy flag")
	}
	if res.Score >= 100 || res.Score < 85 {
		t.Errorf("score %v outside expected fuzzy band", res.Score)
	}
}

func TestResolveBelowThreshold(t *testing.T) {
	d := testDirectory()
	res, ok := d.Resolve("PT Completely Different Company", true, 85)
	if ok {
		t.Fatalf("should not resolve, got %+v", res)
	}
	// Unresolved names still get a display-friendly fallback
	if res.Name == "" {
		t.Error("expected pretty fallback name")
	}

	sugg := d.Suggest("PT Completely Different Company", 3)
	if len(sugg) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(sugg))
	}
	if sugg[0].Score < sugg[1].Score {
		t.Error("suggestions not ranked by score")
	}
}

func TestResolveAmbiguous(t *testing.T) {
	d := NewDirectory([]models.CompanyEntry{
		{Symbol: "XXXX.JK", CompanyName: "PT Duplicate Holdings Tbk"},
		{Symbol: "YYY.JK", CompanyName: "PT DUPLICATE HOLDINGS TBK"},
	})
	res, ok := d.Resolve("PT Duplicate Holdings Tbk", false, 0)
	if !ok {
		t.Fatal("expected resolution")
	}
	if !res.Ambiguous {
		t.Error("expected ambiguity to be surfaced")
	}
	// Tie-break: shortest symbol first
	if res.Symbol != "YYY" {
		t.Errorf("symbol = %q, want YYY", res.Symbol)
	}
}

func TestScanTicker(t *testing.T) {
	d := testDirectory()
	sym, ok := d.ScanTicker("transaction regarding GGRM shares on the exchange")
	if !ok || sym != "GGRM" {
		t.Errorf("ScanTicker = (%q, %v), want GGRM", sym, ok)
	}
	if _, ok := d.ScanTicker("no ticker mentioned here"); ok {
		t.Error("unexpected ticker match")
	}
}

func TestLoadSnapshotFormats(t *testing.T) {
	// Plain-name values and nested objects must both load.
	snapshot := `{
  "AAAA": "PT Alpha Beta Tbk",
  "BBCA": {
    "company_name": "PT Bank Central Asia Tbk",
    "sector": "Financials",
    "sub_sector": "Banks",
    "last_close_price": 9200
  }
}`
	path := filepath.Join(t.TempDir(), "company_map.json")
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := d.Entry("BBCA.JK"); !ok || e.Sector != "Financials" || e.LastClosePrice != 9200 {
		t.Errorf("nested entry not loaded: %+v ok=%v", e, ok)
	}
	if name := d.CanonicalName("AAAA"); name != "PT Alpha Beta Tbk" {
		t.Errorf("plain entry name = %q", name)
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("ALPHA BETA", "ALPHA BETA"); got != 100 {
		t.Errorf("identical strings = %v, want 100", got)
	}
	if got := Similarity("", "ALPHA"); got != 0 {
		t.Errorf("empty vs non-empty = %v, want 0", got)
	}
	// "ABCD" vs "ABXD": LCS=3, ratio = 200*3/8 = 75
	if got := Similarity("ABCD", "ABXD"); got != 75 {
		t.Errorf("Similarity(ABCD, ABXD) = %v, want 75", got)
	}
}

func TestHolderHelpers(t *testing.T) {
	if got := ClassifyHolderType("PT Investor Sentosa"); got != "institution" {
		t.Errorf("ClassifyHolderType = %q, want institution", got)
	}
	if got := ClassifyHolderType("Budi Santoso"); got != "insider" {
		t.Errorf("ClassifyHolderType = %q, want insider", got)
	}

	if got := CleanHolderName("BUDI SANTOSO"); got != "Budi Santoso" {
		t.Errorf("CleanHolderName = %q", got)
	}
	if got := CleanHolderName("pt maju jaya tbk"); got != "PT Maju Jaya TBK" {
		t.Errorf("CleanHolderName = %q", got)
	}

	if IsValidHolder("12") || IsValidHolder("1234567890") {
		t.Error("numeric/short names must be invalid")
	}
	if !IsValidHolder("Budi Santoso") {
		t.Error("plausible name rejected")
	}
}
