// Package company resolves raw issuer and holder names from filing text
// against a static directory snapshot of listed companies. Resolution is
// exact-key first, fuzzy second, and always surfaces ambiguity and
// near-misses instead of guessing past the confidence threshold.
package company

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/hjson/hjson-go/v4"

	"insider_filings/pkg/models"
)

// Suffix appended to bare tickers; IDX symbols are stored both ways.
const symbolSuffix = ".JK"

// Directory is the loaded, immutable company snapshot. Build it once per
// batch run; worker goroutines only read it.
type Directory struct {
	symbolToEntry map[string]models.CompanyEntry
	// reverse index: normalized name key -> symbols. More than one symbol
	// per key is possible and is surfaced, not silently resolved.
	reverseMap map[string][]string
}

// Resolution is the outcome of one resolve call.
type Resolution struct {
	Symbol    string  // base ticker, no suffix; empty when unresolved
	Name      string  // canonical name when resolved, pretty fallback otherwise
	Key       string  // normalized query key
	Score     float64 // 100 for exact matches
	Fuzzy     bool
	Ambiguous bool // the matched key maps to several symbols
}

// Suggestion is one ranked candidate for an unresolved name.
type Suggestion struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	Score       float64 `json:"score"`
	Key         string  `json:"normalized_key"`
}

// Load reads a directory snapshot file. The file is a flat mapping keyed by
// symbol whose values are either a plain name string or an object with
// company_name/sector/sub_sector/last_close_price. Hand-edited caches often
// carry comments or trailing commas, so parsing goes through hjson.
func Load(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read company snapshot: %w", err)
	}

	var root map[string]interface{}
	if err := hjson.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse company snapshot %s: %w", path, err)
	}

	d := &Directory{
		symbolToEntry: make(map[string]models.CompanyEntry),
		reverseMap:    make(map[string][]string),
	}
	for sym, val := range root {
		entry := models.CompanyEntry{}
		switch v := val.(type) {
		case string:
			entry.CompanyName = strings.TrimSpace(v)
		case map[string]interface{}:
			entry.CompanyName = strField(v, "company_name", "name", "legal_name")
			entry.Sector = strField(v, "sector")
			entry.SubSector = strField(v, "sub_sector", "subsector")
			if p, ok := v["last_close_price"].(float64); ok {
				entry.LastClosePrice = p
			}
		default:
			continue
		}
		d.add(sym, entry)
	}

	log.Printf("[CompanyDirectory] loaded %d symbol entries (with %s aliases) from %s",
		len(d.symbolToEntry), symbolSuffix, path)
	return d, nil
}

// NewDirectory builds a directory from an in-memory snapshot (tests, or a
// live directory service collaborator).
func NewDirectory(entries []models.CompanyEntry) *Directory {
	d := &Directory{
		symbolToEntry: make(map[string]models.CompanyEntry),
		reverseMap:    make(map[string][]string),
	}
	for _, e := range entries {
		d.add(e.Symbol, e)
	}
	return d
}

// add registers both the base and suffixed symbol forms.
func (d *Directory) add(sym string, entry models.CompanyEntry) {
	s := strings.ToUpper(strings.TrimSpace(sym))
	if s == "" || entry.CompanyName == "" {
		return
	}
	base := strings.TrimSuffix(s, symbolSuffix)
	for _, alias := range []string{base, base + symbolSuffix} {
		e := entry
		e.Symbol = alias
		d.symbolToEntry[alias] = e
	}

	key := NormalizeKey(entry.CompanyName)
	if key == "" {
		return
	}
	for _, existing := range d.reverseMap[key] {
		if existing == base {
			return
		}
	}
	d.reverseMap[key] = append(d.reverseMap[key], base)
}

// Len returns the number of indexed symbol aliases.
func (d *Directory) Len() int { return len(d.symbolToEntry) }

// Entry returns the snapshot row for a symbol, accepting base or suffixed form.
func (d *Directory) Entry(symbol string) (models.CompanyEntry, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if e, ok := d.symbolToEntry[s]; ok {
		return e, true
	}
	e, ok := d.symbolToEntry[s+symbolSuffix]
	return e, ok
}

// CanonicalName returns the directory name for a symbol.
func (d *Directory) CanonicalName(symbol string) string {
	if e, ok := d.Entry(symbol); ok {
		return e.CompanyName
	}
	return ""
}

// Resolve maps a raw company name to a symbol. Exact normalized-key match
// first; when fuzzy is enabled and no exact key exists, the best-similarity
// key wins if it reaches minScore. Ties prefer the shortest symbol, then
// lexical order. ok is false when nothing reached the threshold.
func (d *Directory) Resolve(rawName string, fuzzy bool, minScore float64) (Resolution, bool) {
	res := Resolution{Key: NormalizeKey(rawName)}
	if res.Key == "" || len(d.reverseMap) == 0 {
		res.Name = PrettyName(rawName)
		return res, false
	}

	if syms, ok := d.reverseMap[res.Key]; ok && len(syms) > 0 {
		res.Symbol = pickSymbol(syms)
		res.Name = d.CanonicalName(res.Symbol)
		res.Score = 100
		res.Ambiguous = len(syms) > 1
		if res.Ambiguous {
			log.Printf("[CompanyDirectory] ambiguous key %q -> %v (using %s)", res.Key, syms, res.Symbol)
		}
		return res, true
	}

	if fuzzy {
		bestKey, bestScore := "", -1.0
		for key := range d.reverseMap {
			if score := Similarity(res.Key, key); score > bestScore {
				bestKey, bestScore = key, score
			}
		}
		if bestKey != "" && bestScore >= minScore {
			syms := d.reverseMap[bestKey]
			res.Symbol = pickSymbol(syms)
			res.Name = d.CanonicalName(res.Symbol)
			res.Score = bestScore
			res.Fuzzy = true
			res.Ambiguous = len(syms) > 1
			return res, true
		}
	}

	res.Name = PrettyName(rawName)
	return res, false
}

// Suggest returns the topK closest directory entries for an unresolved name,
// ranked by similarity. One entry per base symbol.
func (d *Directory) Suggest(rawName string, topK int) []Suggestion {
	if rawName == "" || topK <= 0 {
		return nil
	}
	query := NormalizeKey(rawName)

	type scored struct {
		key   string
		score float64
	}
	ranked := make([]scored, 0, len(d.reverseMap))
	for key := range d.reverseMap {
		ranked = append(ranked, scored{key, Similarity(query, key)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].key < ranked[j].key
	})

	var out []Suggestion
	seen := map[string]bool{}
	for _, r := range ranked {
		syms := append([]string(nil), d.reverseMap[r.key]...)
		sort.Strings(syms)
		for _, sym := range syms {
			if seen[sym] {
				continue
			}
			seen[sym] = true
			out = append(out, Suggestion{
				Symbol:      sym,
				CompanyName: d.CanonicalName(sym),
				Score:       r.score,
				Key:         r.key,
			})
			if len(out) >= topK {
				return out
			}
		}
	}
	return out
}

var tickerToken = regexp.MustCompile(`\b([A-Z0-9]{3,6})\b`)

// ScanTicker falls back to scanning free text for an uppercase token that is
// a known symbol. Used when the issuer-name field is missing entirely.
func (d *Directory) ScanTicker(text string) (string, bool) {
	for _, m := range tickerToken.FindAllStringSubmatch(text, -1) {
		cand := m[1]
		if _, ok := d.symbolToEntry[cand]; ok {
			return strings.TrimSuffix(cand, symbolSuffix), true
		}
	}
	return "", false
}

// IsKnownSymbol reports whether a token is in the snapshot (base or suffixed).
func (d *Directory) IsKnownSymbol(token string) bool {
	_, ok := d.Entry(token)
	return ok
}

// pickSymbol breaks ties deterministically: shortest symbol, then lexical.
func pickSymbol(syms []string) string {
	best := syms[0]
	for _, s := range syms[1:] {
		if len(s) < len(best) || (len(s) == len(best) && s < best) {
			best = s
		}
	}
	return best
}

func strField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
