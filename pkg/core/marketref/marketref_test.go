package marketref

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

func TestReferencePrefersVWAP(t *testing.T) {
	s := NewSnapshot(map[string][]PricePoint{
		"BBCA": {
			{Date: "2025-08-25", Close: 9000, VWAP: 9100},
			{Date: "2025-08-26", Close: 9200, VWAP: 9300},
			{Date: "2025-08-27", Close: 9400, VWAP: 9500},
			{Date: "2025-08-28", Close: 9600, VWAP: 9700},
		},
	})
	ref, ok := s.Reference("BBCA.JK", 20, testNow)
	if !ok {
		t.Fatal("expected reference")
	}
	want := (9100.0 + 9300 + 9500 + 9700) / 4
	if ref.RefPrice != want {
		t.Errorf("ref price = %v, want %v", ref.RefPrice, want)
	}
	if ref.RefType != "vwap_4" || ref.NDays != 4 {
		t.Errorf("ref = %+v", ref)
	}
	if ref.FreshnessDays != 1 {
		t.Errorf("freshness = %d, want 1", ref.FreshnessDays)
	}
}

func TestReferenceMedianCloseWhenVWAPSparse(t *testing.T) {
	s := NewSnapshot(map[string][]PricePoint{
		"GGRM": {
			{Date: "2025-08-25", Close: 100},
			{Date: "2025-08-26", Close: 300},
			{Date: "2025-08-27", Close: 200},
			{Date: "2025-08-28", Close: 400, VWAP: 410},
		},
	})
	ref, ok := s.Reference("GGRM", 20, testNow)
	if !ok {
		t.Fatal("expected reference")
	}
	// 1 vwap of 4 points is below the half-window threshold
	if ref.RefType != "median_close_4" {
		t.Errorf("ref type = %q", ref.RefType)
	}
	if ref.RefPrice != 250 {
		t.Errorf("median = %v, want 250", ref.RefPrice)
	}
}

func TestReferenceWindowTruncation(t *testing.T) {
	pts := make([]PricePoint, 30)
	for i := range pts {
		pts[i] = PricePoint{Date: "2025-07-01", Close: float64(100 + i)}
	}
	s := NewSnapshot(map[string]([]PricePoint){"TLKM": pts})
	ref, ok := s.Reference("TLKM", 20, testNow)
	if !ok || ref.NDays != 20 {
		t.Errorf("ref = %+v ok=%v, want 20-day window", ref, ok)
	}
}

func TestReferenceUnknownSymbol(t *testing.T) {
	s := NewSnapshot(nil)
	if _, ok := s.Reference("ZZZZ", 20, testNow); ok {
		t.Error("unexpected reference for unknown symbol")
	}
}

func TestLoadSnapshotFile(t *testing.T) {
	snapshot := `{
  "BBCA.JK": {
    "company_name": "PT Bank Central Asia Tbk",
    "last_close_price": 9200,
    "latest_close_date": "2025-08-20T00:00:00"
  },
  "AAAA": {"sector": "Financials"}
}`
	path := filepath.Join(t.TempDir(), "company_map.json")
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	close, ok := s.LastClose("BBCA")
	if !ok || close != 9200 {
		t.Errorf("LastClose = %v ok=%v", close, ok)
	}
	ref, ok := s.Reference("BBCA", 20, testNow)
	if !ok || ref.RefType != "close" || ref.RefPrice != 9200 {
		t.Errorf("ref = %+v ok=%v", ref, ok)
	}
	if ref.FreshnessDays != 9 {
		t.Errorf("freshness = %d, want 9", ref.FreshnessDays)
	}
	// entries without any price payload are dropped
	if _, ok := s.LastClose("AAAA"); ok {
		t.Error("priceless entry should not resolve")
	}
}
