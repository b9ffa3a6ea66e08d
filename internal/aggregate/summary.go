package aggregate

import (
	"github.com/shopspring/decimal"

	"budgetplanner/internal/core"
)

// Summary holds the headline figures of a transaction set.
type Summary struct {
	Income      core.Money
	Expense     core.Money
	Balance     core.Money
	SavingsRate float64
}

var hundred = decimal.NewFromInt(100)

// Summarize totals income and expense over every transaction given; it
// applies no window of its own. SavingsRate is balance/income as a
// percentage rounded to one decimal, and 0 when there is no income.
func Summarize(txs []core.Transaction) Summary {
	var totals core.Totals
	for _, t := range txs {
		totals.Add(t)
	}
	s := Summary{
		Income:  totals.Income,
		Expense: totals.Expense,
		Balance: totals.Net(),
	}
	s.SavingsRate = SavingsRate(s.Balance, s.Income)
	return s
}

// SavingsRate returns balance as a percentage of income, rounded half away
// from zero to one decimal. It is 0 when income is not positive.
func SavingsRate(balance, income core.Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	rate := balance.Decimal().Div(income.Decimal()).Mul(hundred).Round(1)
	return rate.InexactFloat64()
}
