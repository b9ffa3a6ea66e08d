// Package query filters, sorts and pages transactions for the table view.
package query

import (
	"sort"
	"strings"
	"time"

	"budgetplanner/internal/core"
)

// Criteria narrows the table. Zero values select everything.
type Criteria struct {
	Type   core.TypeFilter
	Search string
	// Start and End are calendar dates; both ends are inclusive and either
	// may be empty. A bound that does not parse is ignored.
	Start string
	End   string
}

// Active reports whether a search or a date bound is set.
func (c Criteria) Active() bool {
	return c.Search != "" || c.Start != "" || c.End != ""
}

func (c Criteria) bounds() (start, end time.Time, hasStart, hasEnd bool) {
	if d, ok := core.ParseDate(c.Start); ok {
		start, hasStart = core.StartOfDay(d), true
	}
	if d, ok := core.ParseDate(c.End); ok {
		end, hasEnd = core.StartOfDay(d), true
	}
	return start, end, hasStart, hasEnd
}

func matchesSearch(t core.Transaction, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Category), q)
}

type row struct {
	tx    core.Transaction
	at    time.Time
	dated bool
}

// Apply returns the matching transactions, newest first. Transactions with
// the same date keep their input order. Undated transactions are dropped
// when a date bound is in effect and otherwise listed last.
func Apply(txs []core.Transaction, c Criteria) []core.Transaction {
	start, end, hasStart, hasEnd := c.bounds()
	bounded := hasStart || hasEnd

	rows := make([]row, 0, len(txs))
	for _, t := range txs {
		if !c.Type.Matches(t.Type) || !matchesSearch(t, c.Search) {
			continue
		}
		at, ok := core.ParseDate(t.Date)
		if bounded {
			if !ok {
				continue
			}
			day := core.StartOfDay(at)
			if (hasStart && day.Before(start)) || (hasEnd && day.After(end)) {
				continue
			}
		}
		rows = append(rows, row{tx: t, at: at, dated: ok})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.dated != b.dated {
			return a.dated
		}
		return a.at.After(b.at)
	})

	out := make([]core.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.tx
	}
	return out
}
