// Package marketref serves recent close/VWAP reference prices for price
// sanity checks. The snapshot loads once per batch run and is read-only for
// its duration; worker goroutines only query it.
package marketref

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"
)

const symbolSuffix = ".JK"

// PricePoint is one day of a symbol's price series.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
	VWAP  float64 `json:"vwap,omitempty"`
}

// Reference is the computed sanity-check price for one symbol.
type Reference struct {
	RefPrice      float64 `json:"ref_price"`
	RefType       string  `json:"ref_type"` // "vwap_N", "median_close_N", or "close"
	AsOfDate      string  `json:"asof_date,omitempty"`
	NDays         int     `json:"n_days"`
	FreshnessDays int     `json:"freshness_days"` // -1 when the as-of date is unknown
}

type entry struct {
	close    float64
	hasClose bool
	date     string
	series   []PricePoint
}

// Snapshot is the loaded price cache.
type Snapshot struct {
	entries map[string]entry
}

// Load reads the price cache file. Entries sit in the same snapshot file as
// the company directory: symbol -> object carrying last_close_price (or
// close/last/price), an as-of date, and optionally a "series" list.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price snapshot: %w", err)
	}
	var root map[string]interface{}
	if err := hjson.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse price snapshot %s: %w", path, err)
	}

	s := &Snapshot{entries: make(map[string]entry)}
	for sym, val := range root {
		obj, ok := val.(map[string]interface{})
		if !ok {
			continue
		}
		var e entry
		if v, ok := numField(obj, "close", "last", "price", "last_close_price"); ok {
			e.close, e.hasClose = v, true
		}
		e.date = dateField(obj, "date", "asof", "as_of", "updated_on", "latest_close_date")
		if list, ok := obj["series"].([]interface{}); ok {
			for _, item := range list {
				p, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				var pt PricePoint
				pt.Date = dateField(p, "date")
				if v, ok := numField(p, "close"); ok {
					pt.Close = v
				}
				if v, ok := numField(p, "vwap", "VWAP"); ok {
					pt.VWAP = v
				}
				e.series = append(e.series, pt)
			}
		}
		if !e.hasClose && len(e.series) == 0 {
			continue
		}
		s.entries[normalizeSymbol(sym)] = e
	}

	log.Printf("[MarketRef] loaded price data for %d symbols from %s", len(s.entries), path)
	return s, nil
}

// NewSnapshot builds a snapshot from in-memory series, newest point last.
func NewSnapshot(series map[string][]PricePoint) *Snapshot {
	s := &Snapshot{entries: make(map[string]entry)}
	for sym, pts := range series {
		e := entry{series: pts}
		if n := len(pts); n > 0 {
			e.close, e.hasClose = pts[n-1].Close, true
			e.date = pts[n-1].Date
		}
		s.entries[normalizeSymbol(sym)] = e
	}
	return s
}

func (s *Snapshot) lookup(symbol string) (entry, bool) {
	e, ok := s.entries[normalizeSymbol(symbol)]
	return e, ok
}

// LastClose returns the most recent close for a symbol. Used to estimate a
// price for filings that state none.
func (s *Snapshot) LastClose(symbol string) (float64, bool) {
	e, ok := s.lookup(symbol)
	if !ok || !e.hasClose {
		return 0, false
	}
	return e.close, true
}

// Reference computes the sanity-check price over the last nDays points:
// mean VWAP when at least half the window has one, else the median close,
// else the single latest close. Freshness counts days from the as-of date
// to now. ok is false when the symbol has no price data at all.
func (s *Snapshot) Reference(symbol string, nDays int, now time.Time) (Reference, bool) {
	e, ok := s.lookup(symbol)
	if !ok {
		return Reference{}, false
	}

	if len(e.series) > 0 {
		window := e.series
		if nDays > 0 && len(window) > nDays {
			window = window[len(window)-nDays:]
		}
		asof := window[len(window)-1].Date

		var vwaps []float64
		for _, p := range window {
			if p.VWAP > 0 {
				vwaps = append(vwaps, p.VWAP)
			}
		}
		need := len(window) / 2
		if need < 1 {
			need = 1
		}
		if len(vwaps) >= need {
			sum := 0.0
			for _, v := range vwaps {
				sum += v
			}
			return Reference{
				RefPrice:      sum / float64(len(vwaps)),
				RefType:       fmt.Sprintf("vwap_%d", len(window)),
				AsOfDate:      asof,
				NDays:         len(window),
				FreshnessDays: daysSince(asof, now),
			}, true
		}

		var closes []float64
		for _, p := range window {
			if p.Close > 0 {
				closes = append(closes, p.Close)
			}
		}
		if len(closes) > 0 {
			return Reference{
				RefPrice:      median(closes),
				RefType:       fmt.Sprintf("median_close_%d", len(closes)),
				AsOfDate:      asof,
				NDays:         len(closes),
				FreshnessDays: daysSince(asof, now),
			}, true
		}
	}

	if e.hasClose {
		return Reference{
			RefPrice:      e.close,
			RefType:       "close",
			AsOfDate:      e.date,
			NDays:         1,
			FreshnessDays: daysSince(e.date, now),
		}, true
	}
	return Reference{}, false
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func daysSince(date string, now time.Time) int {
	if date == "" {
		return -1
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return -1
	}
	d := int(now.Sub(t).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return d
}

func normalizeSymbol(sym string) string {
	s := strings.ToUpper(strings.TrimSpace(sym))
	return strings.TrimSuffix(s, symbolSuffix)
}

func numField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

func dateField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			if len(v) > 10 {
				v = v[:10]
			}
			return v
		}
	}
	return ""
}
