// Package numparse parses locale-ambiguous numeric strings from filing text.
// Indonesian documents mix EU-style ("1.234,56") and US-style ("1,234.56")
// grouping, sometimes within one document, so disambiguation is positional:
// whichever separator occurs last is the decimal point.
package numparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^0-9,.\-]`)

// ParseNumber parses a number that may use comma or dot as either a decimal
// point or a thousands separator. Unparseable input yields 0, never an error:
// upstream text is uncontrolled and absence must not abort extraction.
func ParseNumber(s string) float64 {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}

	var normalized string
	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		// The separator occurring last is the decimal point.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// EU/ID style: 1.234.567,89
			normalized = strings.ReplaceAll(cleaned, ".", "")
			normalized = strings.ReplaceAll(normalized, ",", ".")
		} else {
			// US style: 1,234,567.89
			normalized = strings.ReplaceAll(cleaned, ",", "")
		}

	case hasComma:
		if strings.Count(cleaned, ",") > 1 {
			// 1,234,567 -> thousands only
			normalized = strings.ReplaceAll(cleaned, ",", "")
		} else if after := cleaned[strings.Index(cleaned, ",")+1:]; isDigits(after) && len(after) == 3 {
			// Single comma with exactly 3 trailing digits: 1,234 -> 1234
			normalized = strings.ReplaceAll(cleaned, ",", "")
		} else {
			// Decimal comma: 12,34 -> 12.34
			normalized = strings.ReplaceAll(cleaned, ",", ".")
		}

	case hasDot:
		if strings.Count(cleaned, ".") > 1 {
			// 1.234.567 -> thousands only
			normalized = strings.ReplaceAll(cleaned, ".", "")
		} else {
			pos := strings.Index(cleaned, ".")
			before := strings.ReplaceAll(cleaned[:pos], "-", "")
			after := cleaned[pos+1:]
			if isDigits(after) && len(after) == 3 && isDigits(before) && before != "" {
				// 16.700 -> 16700 (grouped), but 106.6 stays decimal
				normalized = strings.ReplaceAll(cleaned, ".", "")
			} else {
				normalized = cleaned
			}
		}

	default:
		normalized = cleaned
	}

	val, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseInt parses an amount-like token into an integer share count.
func ParseInt(s string) int64 {
	return int64(ParseNumber(s))
}

// ParsePercentage parses a percentage string ("0,45%" -> 0.45, "45" -> 45).
// A lone comma is always decimal here: percentages do not use comma grouping.
// The result is rounded half-up to 5 decimal places.
func ParsePercentage(s string) float64 {
	txt := nonNumeric.ReplaceAllString(strings.ReplaceAll(s, "%", ""), "")
	if txt == "" {
		return 0
	}

	var normalized string
	hasComma := strings.Contains(txt, ",")
	hasDot := strings.Contains(txt, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(txt, ",") > strings.LastIndex(txt, ".") {
			normalized = strings.ReplaceAll(txt, ".", "")
			normalized = strings.ReplaceAll(normalized, ",", ".")
		} else {
			normalized = strings.ReplaceAll(txt, ",", "")
		}
	case hasComma:
		normalized = strings.ReplaceAll(txt, ",", ".")
	case hasDot:
		if strings.Count(txt, ".") > 1 {
			// Keep the last dot as decimal: 1.234.567 -> 1234.567
			parts := strings.Split(txt, ".")
			normalized = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
		} else {
			// Single dot is ALWAYS decimal for percentages (5.001 -> 5.001)
			normalized = txt
		}
	default:
		normalized = txt
	}

	val, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0
	}
	return roundHalfUp5(val)
}

// roundHalfUp5 rounds to 5 decimal places, halves away from zero.
func roundHalfUp5(v float64) float64 {
	if v >= 0 {
		return math.Floor(v*1e5+0.5) / 1e5
	}
	return math.Ceil(v*1e5-0.5) / 1e5
}

// FloorPct5 truncates a percentage to 5 decimal places. The record builder
// uses truncation, not rounding, so persisted totals are reproducible.
func FloorPct5(v float64) float64 {
	if v >= 0 {
		return math.Floor(v*1e5) / 1e5
	}
	return math.Ceil(v*1e5) / 1e5
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
