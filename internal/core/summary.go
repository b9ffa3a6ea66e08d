package core

// Totals holds income and expense sums for one bucket.
type Totals struct {
	Income  Money
	Expense Money
}

// Add accumulates t into the side its type selects.
func (s *Totals) Add(t Transaction) {
	if t.IsIncome() {
		s.Income = s.Income.Add(t.Amount)
		return
	}
	s.Expense = s.Expense.Add(t.Amount)
}

// Net is income minus expense.
func (s Totals) Net() Money {
	return s.Income.Sub(s.Expense)
}

// Sum is income plus expense.
func (s Totals) Sum() Money {
	return s.Income.Add(s.Expense)
}
