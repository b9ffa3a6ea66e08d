// Package render draws dashboard snapshots and transaction pages as
// terminal text.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budgetplanner/internal/aggregate"
	"budgetplanner/internal/core"
	"budgetplanner/internal/dashboard"
	"budgetplanner/internal/form"
	"budgetplanner/internal/query"
)

const (
	barWidth  = 30
	nameWidth = 28
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Renderer formats amounts with Symbol.
type Renderer struct {
	Symbol string
}

func New(symbol string) Renderer {
	return Renderer{Symbol: symbol}
}

func (r Renderer) money(m core.Money) string {
	return m.Format(r.Symbol)
}

func (r Renderer) signed(t core.Transaction) string {
	label := core.SignedLabel(t, r.Symbol)
	if t.IsIncome() {
		return incomeStyle.Render(label)
	}
	return expenseStyle.Render(label)
}

// Dashboard renders every section of a snapshot. sel picks the category
// chart projection.
func (r Renderer) Dashboard(snap *dashboard.Snapshot, sel core.TypeFilter) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Budget Planner"))
	b.WriteString("\n\n")
	b.WriteString(r.Summary(snap.Summary))
	b.WriteString("\n\n")
	b.WriteString(r.Daily(snap))
	b.WriteString("\n")
	b.WriteString(r.Categories(snap.Project(sel)))
	b.WriteString("\n")
	b.WriteString(r.Trends(snap))
	b.WriteString("\n")
	b.WriteString(r.Recent(snap.Recent))
	return b.String()
}

// Summary renders the four headline cards side by side.
func (r Renderer) Summary(s aggregate.Summary) string {
	card := func(label, value string) string {
		return cardStyle.Render(mutedStyle.Render(label) + "\n" + headingStyle.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Income", incomeStyle.Render(r.money(s.Income))),
		card("Expenses", expenseStyle.Render(r.money(s.Expense))),
		card("Balance", r.money(s.Balance)),
		card("Savings rate", fmt.Sprintf("%.1f%%", s.SavingsRate)),
	)
}

// Daily renders the windowed daily totals as paired bars.
func (r Renderer) Daily(snap *dashboard.Snapshot) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Daily totals, last " + snap.Range.String()))
	b.WriteString("\n")
	if len(snap.Daily) == 0 {
		b.WriteString(mutedStyle.Render("No transactions in this range"))
		b.WriteString("\n")
		return b.String()
	}

	var peak int64
	for _, d := range snap.Daily {
		peak = max(peak, d.Income.Cents, d.Expense.Cents)
	}
	for _, d := range snap.Daily {
		fmt.Fprintf(&b, "%s  %s %s\n", core.FormatDate(d.Day),
			incomeStyle.Render(bar(d.Income.Cents, peak)), r.money(d.Income))
		fmt.Fprintf(&b, "%s  %s %s\n", strings.Repeat(" ", 10),
			expenseStyle.Render(bar(d.Expense.Cents, peak)), r.money(d.Expense))
	}
	return b.String()
}

// Categories renders a projection as a share list with its total.
func (r Renderer) Categories(p aggregate.Projection) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("By category (" + p.Selector.String() + ")"))
	b.WriteString("\n")
	total := p.Total()
	if len(p.Labels) == 0 {
		b.WriteString(mutedStyle.Render("No categories"))
		b.WriteString("\n")
	}
	for i, label := range p.Labels {
		v := p.Values[i]
		fmt.Fprintf(&b, "%-*s %s %s  %5.1f%%\n", nameWidth, truncate(label, nameWidth),
			bar(v.Cents, total.Cents), r.money(v), share(v, total))
	}
	fmt.Fprintf(&b, "%s: %s\n", p.Title(), r.money(total))
	return b.String()
}

// Trends renders the all-time sparklines and the closing balance.
func (r Renderer) Trends(snap *dashboard.Snapshot) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Trends"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Income   %s\n", incomeStyle.Render(Sparkline(snap.IncomeSeries)))
	fmt.Fprintf(&b, "Expenses %s\n", expenseStyle.Render(Sparkline(snap.ExpenseSeries)))
	balance := core.Money{}
	if n := len(snap.Balance); n > 0 {
		balance = snap.Balance[n-1].Balance
	}
	fmt.Fprintf(&b, "Balance  %s (%d points)\n", r.money(balance), len(snap.Balance))
	return b.String()
}

// Recent renders the newest transactions.
func (r Renderer) Recent(txs []core.Transaction) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Recent transactions"))
	b.WriteString("\n")
	if len(txs) == 0 {
		b.WriteString(mutedStyle.Render("No transactions yet"))
		b.WriteString("\n")
	}
	for _, t := range txs {
		fmt.Fprintf(&b, "%s  %-*s %s\n", t.Date, nameWidth, truncate(t.Name, nameWidth), r.signed(t))
	}
	return b.String()
}

// Table renders one page of the transaction table.
func (r Renderer) Table(p query.Page, c query.Criteria) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Transactions"))
	if c.Active() {
		fmt.Fprintf(&b, "  %s", mutedStyle.Render(fmt.Sprintf("%d results", p.TotalItems)))
	}
	b.WriteString("\n")

	if len(p.Items) == 0 {
		b.WriteString(mutedStyle.Render("No transactions found"))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-36s  %-10s  %-*s  %-16s  %s\n", "ID", "Date", nameWidth, "Name", "Category", "Amount")
	for _, t := range p.Items {
		fmt.Fprintf(&b, "%-36s  %-10s  %-*s  %-16s  %s\n",
			t.ID, t.Date, nameWidth, truncate(t.Name, nameWidth),
			truncate(t.DisplayCategory(), 16), r.signed(t))
	}

	nav := fmt.Sprintf("Page %d of %d", p.Page, max(p.TotalPages, 1))
	if p.HasPrev() {
		nav = "< " + nav
	}
	if p.HasNext() {
		nav += " >"
	}
	b.WriteString(mutedStyle.Render(nav))
	b.WriteString("\n")
	return b.String()
}

// FormErrors lists field errors one per line.
func FormErrors(err error) string {
	var fe form.Errors
	if !errors.As(err, &fe) {
		return errorStyle.Render(err.Error())
	}
	lines := make([]string, len(fe))
	for i, e := range fe {
		lines[i] = errorStyle.Render(e.Error())
	}
	return strings.Join(lines, "\n")
}

// Sparkline maps the series to block characters scaled to its peak.
func Sparkline(points []aggregate.Point) string {
	if len(points) == 0 {
		return ""
	}
	var peak int64
	for _, p := range points {
		peak = max(peak, p.Amount.Cents)
	}
	out := make([]rune, len(points))
	for i, p := range points {
		idx := 0
		if peak > 0 {
			idx = int(p.Amount.Cents * int64(len(sparkRunes)-1) / peak)
		}
		out[i] = sparkRunes[max(0, idx)]
	}
	return string(out)
}

func bar(v, peak int64) string {
	n := 0
	if peak > 0 && v > 0 {
		n = min(barWidth, max(1, int(v*barWidth/peak)))
	}
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}

func share(v, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return float64(v.Cents) * 100 / float64(total.Cents)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
