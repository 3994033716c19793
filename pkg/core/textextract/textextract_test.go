package textextract

import (
	"testing"
)

const sampleFiling = `
Announcement of Share Ownership
Go To Indonesian Page
Name of Share of Public Company        PT Alpha Beta Tbk
Name of Shareholder                    Budi Santoso
Number of shares owned before the transaction : 14.838.000
Percentage of ownership before the transaction : 0,45%
Purposes of transaction
Investment
`

func TestFindTableValue(t *testing.T) {
	doc := NewDocument(sampleFiling).SliceToEnglish()

	if got := doc.FindTableValue("Name of Shareholder"); got != "Budi Santoso" {
		t.Errorf("holder = %q, want %q", got, "Budi Santoso")
	}
	if got := doc.FindTableValue("Name of Share of Public Company"); got != "PT Alpha Beta Tbk" {
		t.Errorf("issuer = %q, want %q", got, "PT Alpha Beta Tbk")
	}
	// Absent field -> empty, never an error
	if got := doc.FindTableValue("Controlling Shareholder"); got != "" {
		t.Errorf("absent field = %q, want empty", got)
	}
}

func TestFindTableValueNextLine(t *testing.T) {
	doc := NewDocument("Purposes of transaction\nInvestment\n")
	if got := doc.FindTableValue("Purposes of transaction"); got != "Investment" {
		t.Errorf("purpose = %q, want Investment", got)
	}
}

func TestFindNumberAndPercentage(t *testing.T) {
	doc := NewDocument(sampleFiling)
	if got := doc.FindNumberAfterKeyword("Number of shares owned before the transaction"); got != "14.838.000" {
		t.Errorf("number = %q", got)
	}
	if got := doc.FindPercentageAfterKeyword("Percentage of ownership before the transaction"); got != "0,45" {
		t.Errorf("percentage = %q", got)
	}
}

func TestSliceToEnglish(t *testing.T) {
	doc := NewDocument(sampleFiling)
	sliced := doc.SliceToEnglish()
	if len(sliced.Lines) >= len(doc.Lines) {
		t.Errorf("expected fewer lines after slicing, got %d vs %d", len(sliced.Lines), len(doc.Lines))
	}
	if sliced.Lines[0] != "Name of Share of Public Company        PT Alpha Beta Tbk" {
		t.Errorf("unexpected first line %q", sliced.Lines[0])
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"13 August 2025", "20250813", true},
		{"Transaction Date: 5 Mei 2024", "20240505", true},
		{"1 Desember 2023", "20231201", true},
		{"no date here", "", false},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseDate(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestDateSpans(t *testing.T) {
	spans := DateSpans("Buy 1500 13 August 2025 800.000")
	if len(spans) == 0 {
		t.Fatal("expected a date span")
	}
	// The span must cover the "13" so price selection can exclude it.
	covered := false
	for _, sp := range spans {
		if sp[0] <= 9 && 9 < sp[1] {
			covered = true
		}
	}
	if !covered {
		t.Errorf("day-of-month not covered by spans %v", spans)
	}
}

func TestIsNumericDate(t *testing.T) {
	if !IsNumericDate("20250813") {
		t.Error("20250813 should parse as a calendar date")
	}
	if IsNumericDate("14838000") {
		t.Error("14838000 is not a calendar date (month 83)")
	}
	if IsNumericDate("1500") {
		t.Error("short tokens are not numeric dates")
	}
}
