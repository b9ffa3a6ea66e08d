package aggregate

import (
	"math"
	"reflect"
	"testing"
	"time"

	"budgetplanner/internal/core"
)

func tx(id, date string, typ core.TransactionType, cents int64, category string) core.Transaction {
	return core.Transaction{ID: id, Date: date, Name: id, Amount: core.Cents(cents), Type: typ, Category: category}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestDaily(t *testing.T) {
	txs := []core.Transaction{
		tx("c", "2024-01-02", core.Income, 1000, ""),
		tx("a", "2024-01-01", core.Income, 10000, ""),
		tx("bad", "yesterday", core.Income, 500, ""),
		tx("b", "2024-01-01", core.Expense, 4000, ""),
	}
	want := []DailyBucket{
		{Day: day(2024, time.January, 1), Totals: core.Totals{Income: core.Cents(10000), Expense: core.Cents(4000)}},
		{Day: day(2024, time.January, 2), Totals: core.Totals{Income: core.Cents(1000)}},
	}
	got := Daily(txs)
	if len(got) != len(want) {
		t.Fatalf("got %d buckets, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Day.Equal(want[i].Day) || got[i].Income != want[i].Income || got[i].Expense != want[i].Expense {
			t.Errorf("bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if txs[0].ID != "c" {
		t.Fatalf("input reordered")
	}
}

func TestDailyGroupsTimestampsByLocalDay(t *testing.T) {
	morning := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.Local).Format(time.RFC3339)
	evening := time.Date(2024, time.May, 3, 21, 0, 0, 0, time.Local).Format(time.RFC3339)
	got := Daily([]core.Transaction{
		tx("a", morning, core.Expense, 100, ""),
		tx("b", evening, core.Expense, 200, ""),
	})
	if len(got) != 1 || got[0].Expense != core.Cents(300) || !got[0].Day.Equal(day(2024, time.May, 3)) {
		t.Fatalf("unexpected buckets %+v", got)
	}
}

func TestByCategory(t *testing.T) {
	got := ByCategory([]core.Transaction{
		tx("a", "2024-01-01", core.Expense, 500, "Food"),
		tx("b", "2024-01-01", core.Income, 100000, "Salary"),
		tx("c", "2024-01-02", core.Expense, 250, "Food"),
		tx("d", "2024-01-02", core.Expense, 100, "  "),
		tx("e", "bad date", core.Income, 300, ""),
	})
	want := []CategoryBucket{
		{Name: "Food", Totals: core.Totals{Expense: core.Cents(750)}},
		{Name: "Salary", Totals: core.Totals{Income: core.Cents(100000)}},
		{Name: core.Uncategorized, Totals: core.Totals{Income: core.Cents(300), Expense: core.Cents(100)}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestProjectCategories(t *testing.T) {
	buckets := []CategoryBucket{
		{Name: "Food", Totals: core.Totals{Expense: core.Cents(750)}},
		{Name: "Salary", Totals: core.Totals{Income: core.Cents(100000)}},
		{Name: "Gifts", Totals: core.Totals{Income: core.Cents(2000), Expense: core.Cents(1000)}},
		{Name: "Empty"},
	}
	tests := []struct {
		sel    core.TypeFilter
		labels []string
		values []int64
		title  string
		total  int64
	}{
		{core.FilterBoth, []string{"Food", "Salary", "Gifts", "Empty"}, []int64{750, 100000, 3000, 0}, "Total Amount", 103750},
		{core.FilterIncome, []string{"Salary", "Gifts"}, []int64{100000, 2000}, "Total income", 102000},
		{core.FilterExpense, []string{"Food", "Gifts"}, []int64{750, 1000}, "Total expense", 1750},
	}
	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			p := ProjectCategories(tt.sel, buckets)
			if !reflect.DeepEqual(p.Labels, tt.labels) {
				t.Fatalf("labels = %v, want %v", p.Labels, tt.labels)
			}
			if len(p.Values) != len(p.Labels) {
				t.Fatalf("labels and values not aligned")
			}
			for i, v := range tt.values {
				if p.Values[i].Cents != v {
					t.Errorf("value %d = %d, want %d", i, p.Values[i].Cents, v)
				}
			}
			if p.Title() != tt.title || p.Total().Cents != tt.total {
				t.Errorf("title/total = %q/%d", p.Title(), p.Total().Cents)
			}
		})
	}
}

func TestProjectIncomeExcludesExpenseOnlyCategory(t *testing.T) {
	p := ProjectCategories(core.FilterIncome, []CategoryBucket{{Name: "Rent", Totals: core.Totals{Expense: core.Cents(90000)}}})
	if len(p.Labels) != 0 || len(p.Values) != 0 {
		t.Fatalf("expense-only category leaked into income projection: %+v", p)
	}
}

func TestRunningBalance(t *testing.T) {
	txs := []core.Transaction{
		tx("c", "2024-01-03", core.Income, 500, ""),
		tx("a", "2024-01-01", core.Income, 5000, ""),
		tx("x", "garbage", core.Expense, 999, ""),
		tx("b", "2024-01-02", core.Expense, 2000, ""),
	}
	got := RunningBalance(txs)
	want := []int64{5000, 3000, 3500}
	if len(got) != len(want) {
		t.Fatalf("got %d points", len(got))
	}
	for i, w := range want {
		if got[i].Balance.Cents != w {
			t.Errorf("point %d = %d, want %d", i, got[i].Balance.Cents, w)
		}
	}
	if !got[0].At.Equal(day(2024, time.January, 1)) {
		t.Errorf("first point at %v", got[0].At)
	}
}

func TestRunningBalanceStableForEqualDates(t *testing.T) {
	got := RunningBalance([]core.Transaction{
		tx("a", "2024-01-01", core.Expense, 100, ""),
		tx("b", "2024-01-01", core.Income, 300, ""),
	})
	if got[0].Balance.Cents != -100 || got[1].Balance.Cents != 200 {
		t.Fatalf("equal dates reordered: %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		txs     []core.Transaction
		balance int64
		rate    float64
	}{
		{
			name: "quarter saved",
			txs: []core.Transaction{
				tx("a", "2024-01-01", core.Income, 20000, ""),
				tx("b", "2024-01-01", core.Expense, 15000, ""),
			},
			balance: 5000,
			rate:    25.0,
		},
		{
			name:    "no income",
			txs:     []core.Transaction{tx("a", "2024-01-01", core.Expense, 15000, "")},
			balance: -15000,
			rate:    0,
		},
		{name: "empty", rate: 0},
		{
			name: "rounded",
			txs: []core.Transaction{
				tx("a", "2024-01-01", core.Income, 30000, ""),
				tx("b", "2024-01-01", core.Expense, 20000, ""),
			},
			balance: 10000,
			rate:    33.3,
		},
		{
			name: "overspent",
			txs: []core.Transaction{
				tx("a", "2024-01-01", core.Income, 10000, ""),
				tx("b", "bad", core.Expense, 15000, ""),
			},
			balance: -5000,
			rate:    -50.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.txs)
			if s.Balance.Cents != tt.balance {
				t.Errorf("balance = %d, want %d", s.Balance.Cents, tt.balance)
			}
			if s.SavingsRate != tt.rate {
				t.Errorf("savings rate = %v, want %v", s.SavingsRate, tt.rate)
			}
		})
	}
}

func TestSavingsRateHalfUp(t *testing.T) {
	// 6.25% rounds half away from zero.
	if got := SavingsRate(core.Cents(100), core.Cents(1600)); got != 6.3 {
		t.Fatalf("got %v, want 6.3", got)
	}
}

func TestTypeSeries(t *testing.T) {
	txs := []core.Transaction{
		tx("b", "2024-01-05", core.Income, 200, ""),
		tx("e", "2024-01-02", core.Expense, 50, ""),
		tx("a", "2024-01-01", core.Income, 100, ""),
	}
	got := TypeSeries(txs, core.Income)
	if len(got) != 2 || got[0].Amount.Cents != 100 || got[1].Amount.Cents != 200 {
		t.Fatalf("income series = %+v", got)
	}
	if got := TypeSeries(txs, core.Expense); len(got) != 1 || got[0].Amount.Cents != 50 {
		t.Fatalf("expense series = %+v", got)
	}
}

func TestRecent(t *testing.T) {
	var txs []core.Transaction
	for i, d := range []string{"2024-01-03", "2024-01-01", "2024-01-07", "2024-01-05", "2024-01-02", "2024-01-06", "nope"} {
		txs = append(txs, tx(string(rune('a'+i)), d, core.Expense, 100, ""))
	}
	got := Recent(txs, 5)
	var ids []string
	for _, t := range got {
		ids = append(ids, t.ID)
	}
	want := []string{"c", "f", "d", "a", "e"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("recent = %v, want %v", ids, want)
	}
	if Recent(txs, 0) != nil {
		t.Fatalf("n=0 should return nil")
	}
}

func TestExtremeAmountsDoNotFlipSign(t *testing.T) {
	txs := []core.Transaction{
		tx("a", "2024-01-01", core.Income, math.MaxInt64, ""),
		tx("b", "2024-01-02", core.Income, math.MaxInt64, ""),
		tx("c", "2024-01-03", core.Expense, 100, ""),
	}
	s := Summarize(txs)
	if s.Income.Cents != math.MaxInt64 || s.Balance.IsNegative() {
		t.Fatalf("summary wrapped: %+v", s)
	}
	points := RunningBalance(txs)
	for i, p := range points {
		if p.Balance.IsNegative() {
			t.Fatalf("balance point %d went negative: %d", i, p.Balance.Cents)
		}
	}
}
