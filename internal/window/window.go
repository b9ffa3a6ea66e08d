// Package window narrows a transaction set to a trailing time range.
package window

import (
	"strings"
	"time"

	"budgetplanner/internal/core"
)

// Range is a symbolic trailing window.
type Range string

const (
	Week  Range = "week"
	Month Range = "month"
	Year  Range = "year"
)

// Ranges lists the selectable ranges in display order.
func Ranges() []Range {
	return []Range{Week, Month, Year}
}

// ParseRange maps "week", "month" or "year" (any case) to a Range.
// Anything else selects Month.
func ParseRange(s string) Range {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case Week, Month, Year:
		return r
	default:
		return Month
	}
}

func (r Range) String() string {
	return string(r)
}

// Cutoff returns the earliest instant included in r as seen from now.
// Months and years are calendar steps, so they follow time.AddDate
// normalization (March 31 minus one month is March 2 or 3).
func Cutoff(r Range, now time.Time) time.Time {
	switch r {
	case Week:
		return now.AddDate(0, 0, -7)
	case Year:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// FilterSince keeps transactions dated on or after cutoff. Transactions
// whose date does not parse are dropped. The input is not modified.
func FilterSince(txs []core.Transaction, cutoff time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		d, ok := core.ParseDate(t.Date)
		if !ok || d.Before(cutoff) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Since is FilterSince with the cutoff for r.
func Since(txs []core.Transaction, r Range, now time.Time) []core.Transaction {
	return FilterSince(txs, Cutoff(r, now))
}
