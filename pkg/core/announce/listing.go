package announce

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// ParseListing extracts announcement metadata from a saved exchange listing
// page. Every PDF link becomes one row; the title and published date come
// from the enclosing table row or list item.
func ParseListing(r io.Reader) ([]models.AnnouncementMeta, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var metas []models.AnnouncementMeta
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") || seen[href] {
			return
		}
		seen[href] = true

		container := a.Closest("tr")
		if container.Length() == 0 {
			container = a.Closest("li")
		}
		if container.Length() == 0 {
			container = a.Parent()
		}

		metas = append(metas, models.AnnouncementMeta{
			Filename:    path.Base(href),
			URL:         href,
			Title:       listingTitle(container, a),
			PublishedAt: listingDate(container),
		})
	})
	return metas, nil
}

// listingTitle prefers the anchor's own text when it is more than a bare
// filename, otherwise the first non-empty cell of the row.
func listingTitle(container, a *goquery.Selection) string {
	text := strings.TrimSpace(a.Text())
	if text != "" && !strings.HasSuffix(strings.ToLower(text), ".pdf") {
		return text
	}
	title := ""
	container.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		t := strings.TrimSpace(td.Text())
		if t != "" && !strings.HasSuffix(strings.ToLower(t), ".pdf") && !isDateText(t) {
			title = t
			return false
		}
		return true
	})
	return title
}

func listingDate(container *goquery.Selection) time.Time {
	if normalized, ok := textextract.ParseDate(container.Text()); ok {
		if t, err := time.Parse("20060102", normalized); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isDateText(s string) bool {
	raw, ok := textextract.FindDate(s)
	if !ok {
		return false
	}
	// date-only cells are little more than the date itself
	return len(s) <= len(raw)+10
}
