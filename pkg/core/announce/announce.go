// Package announce resolves a filing document to the announcement metadata
// recorded when the document was downloaded. Metadata lives in a JSON artifact
// written by the download collaborator; a saved listing page can seed the same
// index when the artifact is missing.
package announce

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"insider_filings/pkg/models"
)

// downloadItem is one row of the downloads artifact. The artifact is a JSON
// list; fields beyond these are ignored.
type downloadItem struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Ticker    string `json:"ticker"`
	Timestamp string `json:"timestamp"`
}

// Index maps document filenames to announcement metadata.
type Index struct {
	items []models.AnnouncementMeta
}

// LoadIndex reads the downloads artifact. A missing file yields an empty
// index; malformed JSON goes through a repair pass before giving up.
func LoadIndex(filePath string) (*Index, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Announce] no downloads artifact at %s", filePath)
			return &Index{}, nil
		}
		return nil, fmt.Errorf("read downloads artifact: %w", err)
	}
	return ParseIndex(data)
}

// ParseIndex decodes the artifact bytes, repairing malformed JSON if needed.
func ParseIndex(data []byte) (*Index, error) {
	var rows []downloadItem
	if err := json.Unmarshal(data, &rows); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(string(data))
		if rerr != nil {
			return nil, fmt.Errorf("decode downloads artifact: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &rows); err != nil {
			return nil, fmt.Errorf("decode repaired downloads artifact: %w", err)
		}
		log.Printf("[Announce] repaired malformed downloads artifact")
	}

	idx := &Index{}
	for _, r := range rows {
		if r.Filename == "" && r.URL == "" {
			continue
		}
		idx.items = append(idx.items, models.AnnouncementMeta{
			Filename:    r.Filename,
			URL:         r.URL,
			Title:       r.Title,
			PublishedAt: parseTimestamp(r.Timestamp),
		})
	}
	return idx, nil
}

// Len reports the number of indexed announcements.
func (x *Index) Len() int { return len(x.items) }

// Add appends metadata rows, e.g. from a parsed listing page.
func (x *Index) Add(metas ...models.AnnouncementMeta) {
	x.items = append(x.items, metas...)
}

// Resolve finds the metadata row for a document filename. Matching tries, in
// order: exact basename against the recorded filename, basename of the
// recorded URL, and finally the extension-stripped stem of either.
func (x *Index) Resolve(filename string) (*models.AnnouncementMeta, bool) {
	base := path.Base(strings.TrimSpace(filename))
	if base == "" || base == "." {
		return nil, false
	}

	for i := range x.items {
		if path.Base(x.items[i].Filename) == base {
			return &x.items[i], true
		}
	}
	for i := range x.items {
		if x.items[i].URL != "" && path.Base(x.items[i].URL) == base {
			return &x.items[i], true
		}
	}
	st := stem(base)
	for i := range x.items {
		if stem(path.Base(x.items[i].Filename)) == st || stem(path.Base(x.items[i].URL)) == st {
			return &x.items[i], true
		}
	}
	return nil, false
}

func stem(base string) string {
	if base == "" || base == "." {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// timestampLayouts covers the formats the download collaborator has emitted
// over time.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02 Jan 2006 15:04",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
