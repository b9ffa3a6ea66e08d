// Package aggregate derives chart and summary series from transactions.
//
// Every function is pure: inputs are never modified and the same input
// always yields the same output. Transactions whose date does not parse
// are skipped by every chronological view.
package aggregate

import (
	"sort"
	"time"

	"budgetplanner/internal/core"
)

// DailyBucket holds the totals of one local calendar day.
type DailyBucket struct {
	Day time.Time
	core.Totals
}

// CategoryBucket holds the totals of one display category.
type CategoryBucket struct {
	Name string
	core.Totals
}

// BalancePoint is the running balance right after one transaction.
type BalancePoint struct {
	At      time.Time
	Balance core.Money
}

// Point is one value of a per-type series.
type Point struct {
	At     time.Time
	Amount core.Money
}

// Daily groups transactions by the start of their local day, ascending.
func Daily(txs []core.Transaction) []DailyBucket {
	index := make(map[time.Time]int)
	var out []DailyBucket
	for _, t := range txs {
		d, ok := core.ParseDate(t.Date)
		if !ok {
			continue
		}
		day := core.StartOfDay(d)
		i, seen := index[day]
		if !seen {
			i = len(out)
			index[day] = i
			out = append(out, DailyBucket{Day: day})
		}
		out[i].Add(t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

// ByCategory groups transactions by display category in first-seen order.
// Callers that need a particular order must sort the result.
func ByCategory(txs []core.Transaction) []CategoryBucket {
	index := make(map[string]int)
	var out []CategoryBucket
	for _, t := range txs {
		name := t.DisplayCategory()
		i, seen := index[name]
		if !seen {
			i = len(out)
			index[name] = i
			out = append(out, CategoryBucket{Name: name})
		}
		out[i].Add(t)
	}
	return out
}

// Projection is an index-aligned label/value series for a category chart.
type Projection struct {
	Selector core.TypeFilter
	Labels   []string
	Values   []core.Money
}

// ProjectCategories selects the category values shown for sel.
//
// FilterBoth keeps every bucket with income+expense as its value.
// FilterIncome and FilterExpense keep only the buckets whose total on that
// side is non-zero, so a category with no income is absent from the income
// projection rather than shown as zero.
func ProjectCategories(sel core.TypeFilter, buckets []CategoryBucket) Projection {
	p := Projection{Selector: sel}
	for _, b := range buckets {
		var v core.Money
		switch sel {
		case core.FilterIncome:
			if b.Income.IsZero() {
				continue
			}
			v = b.Income
		case core.FilterExpense:
			if b.Expense.IsZero() {
				continue
			}
			v = b.Expense
		default:
			v = b.Sum()
		}
		p.Labels = append(p.Labels, b.Name)
		p.Values = append(p.Values, v)
	}
	return p
}

// Total sums the projected values.
func (p Projection) Total() core.Money {
	var sum core.Money
	for _, v := range p.Values {
		sum = sum.Add(v)
	}
	return sum
}

// Title is the caption shown with the projection total.
func (p Projection) Title() string {
	switch p.Selector {
	case core.FilterIncome:
		return "Total income"
	case core.FilterExpense:
		return "Total expense"
	default:
		return "Total Amount"
	}
}

type dated struct {
	at time.Time
	tx core.Transaction
}

// chronological returns the parseable transactions sorted ascending by date.
// Equal dates keep their input order.
func chronological(txs []core.Transaction) []dated {
	out := make([]dated, 0, len(txs))
	for _, t := range txs {
		if d, ok := core.ParseDate(t.Date); ok {
			out = append(out, dated{at: d, tx: t})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].at.Before(out[j].at)
	})
	return out
}

// RunningBalance walks the transactions in date order starting from zero,
// adding income and subtracting expense, and emits one point per step.
func RunningBalance(txs []core.Transaction) []BalancePoint {
	ordered := chronological(txs)
	out := make([]BalancePoint, 0, len(ordered))
	var balance core.Money
	for _, d := range ordered {
		if d.tx.IsIncome() {
			balance = balance.Add(d.tx.Amount)
		} else {
			balance = balance.Sub(d.tx.Amount)
		}
		out = append(out, BalancePoint{At: d.at, Balance: balance})
	}
	return out
}

// TypeSeries returns the transactions of one type as date-ordered points.
func TypeSeries(txs []core.Transaction, typ core.TransactionType) []Point {
	var out []Point
	for _, d := range chronological(txs) {
		if d.tx.Type == typ {
			out = append(out, Point{At: d.at, Amount: d.tx.Amount})
		}
	}
	return out
}

// Recent returns up to n transactions, newest first. Transactions with the
// same date keep their input order; undated ones are never returned.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if n <= 0 {
		return nil
	}
	ordered := chronological(txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].at.After(ordered[j].at)
	})
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	out := make([]core.Transaction, len(ordered))
	for i, d := range ordered {
		out[i] = d.tx
	}
	return out
}
