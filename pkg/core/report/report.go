// Package report builds the per-run digest: counts, skip reasons, and anomaly
// totals in markdown, with an HTML rendering for collaborators that want one.
package report

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"insider_filings/pkg/models"
)

// Summary aggregates one batch run.
type Summary struct {
	Date      string
	Processed int
	Inserted  int
	Skipped   int

	SkipReasons map[string]int
	FlagCounts  map[string]int

	// Top records by absolute transaction value, largest first.
	Notable []*models.FilingRecord
}

const notableLimit = 10

// Build assembles a summary from the run's records and fatal alerts. Records
// with a skip reason count as skipped even when a record object exists.
func Build(records []*models.FilingRecord, notInserted []models.Alert, now time.Time) *Summary {
	s := &Summary{
		Date:        now.Format("2006-01-02"),
		SkipReasons: map[string]int{},
		FlagCounts:  map[string]int{},
	}

	for _, rec := range records {
		s.Processed++
		if rec.SkipReason != "" {
			s.Skipped++
			s.SkipReasons[rec.SkipReason]++
			continue
		}
		s.Inserted++
		for _, f := range rec.AuditFlags {
			s.FlagCounts[f.Code]++
		}
		s.Notable = append(s.Notable, rec)
	}
	for _, a := range notInserted {
		s.Processed++
		s.Skipped++
		s.SkipReasons[a.Code]++
	}

	sort.Slice(s.Notable, func(i, j int) bool {
		return s.Notable[i].TransactionValue > s.Notable[j].TransactionValue
	})
	if len(s.Notable) > notableLimit {
		s.Notable = s.Notable[:notableLimit]
	}
	return s
}

// Markdown renders the digest.
func (s *Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Insider Filings Run %s\n\n", s.Date)
	fmt.Fprintf(&b, "- Documents processed: %d\n", s.Processed)
	fmt.Fprintf(&b, "- Records inserted: %d\n", s.Inserted)
	fmt.Fprintf(&b, "- Documents skipped: %d\n\n", s.Skipped)

	if len(s.SkipReasons) > 0 {
		b.WriteString("## Skip Reasons\n\n")
		for _, k := range sortedKeys(s.SkipReasons) {
			fmt.Fprintf(&b, "- `%s`: %d\n", k, s.SkipReasons[k])
		}
		b.WriteString("\n")
	}

	if len(s.FlagCounts) > 0 {
		b.WriteString("## Anomaly Flags\n\n")
		for _, k := range sortedKeys(s.FlagCounts) {
			fmt.Fprintf(&b, "- `%s`: %d\n", k, s.FlagCounts[k])
		}
		b.WriteString("\n")
	}

	if len(s.Notable) > 0 {
		b.WriteString("## Largest Transactions\n\n")
		b.WriteString("| Symbol | Holder | Type | Value |\n")
		b.WriteString("|--------|--------|------|-------|\n")
		for _, rec := range s.Notable {
			fmt.Fprintf(&b, "| %s | %s | %s | %.0f |\n",
				rec.Symbol, rec.HolderName, rec.TransactionType, rec.TransactionValue)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts the markdown digest to HTML.
func (s *Summary) RenderHTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(s.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteArtifacts writes run_report_{date}.md and .html under dir.
func (s *Summary) WriteArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	mdPath := filepath.Join(dir, fmt.Sprintf("run_report_%s.md", s.Date))
	if err := os.WriteFile(mdPath, []byte(s.Markdown()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}

	html, err := s.RenderHTML()
	if err != nil {
		return err
	}
	htmlPath := filepath.Join(dir, fmt.Sprintf("run_report_%s.html", s.Date))
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", htmlPath, err)
	}

	log.Printf("[Report] wrote %s and %s", mdPath, htmlPath)
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
