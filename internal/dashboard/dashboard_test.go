package dashboard

import (
	"context"
	"testing"
	"time"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/query"
	"budgetplanner/internal/store"
	"budgetplanner/internal/window"
)

type countingSource struct {
	*store.Store
	lists int
}

func (c *countingSource) List() []core.Transaction {
	c.lists++
	return c.Store.List()
}

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local)

func seeded(t *testing.T) *countingSource {
	t.Helper()
	ctx := context.Background()
	s := store.New(ctx, nil, store.WithLogger(log.Discard()))
	for _, n := range []core.NewTransaction{
		{Date: "2024-03-10", Name: "Salary", Amount: core.Cents(200000), Type: core.Income, Category: "Salary"},
		{Date: "2024-03-12", Name: "Groceries", Amount: core.Cents(5000), Type: core.Expense, Category: "Food"},
		{Date: "2024-01-20", Name: "Rent", Amount: core.Cents(100000), Type: core.Expense, Category: "Bills"},
		{Date: "garbage", Name: "Lost receipt", Amount: core.Cents(700), Type: core.Expense},
	} {
		if _, err := s.Add(ctx, n); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return &countingSource{Store: s}
}

func newService(src Source) *Service {
	return New(src, WithLogger(log.Discard()), WithClock(func() time.Time { return fixedNow }))
}

func TestSnapshot(t *testing.T) {
	svc := newService(seeded(t))
	snap := svc.Snapshot(window.Week)

	if len(snap.Window) != 2 {
		t.Fatalf("week window has %d transactions, want 2", len(snap.Window))
	}
	if len(snap.Daily) != 2 || snap.Daily[0].Income.Cents != 200000 || snap.Daily[1].Expense.Cents != 5000 {
		t.Fatalf("unexpected daily buckets %+v", snap.Daily)
	}
	if len(snap.Categories) != 2 {
		t.Fatalf("unexpected categories %+v", snap.Categories)
	}

	// Summary covers every transaction regardless of range.
	if snap.Summary.Expense.Cents != 105700 || snap.Summary.Income.Cents != 200000 {
		t.Fatalf("unexpected summary %+v", snap.Summary)
	}
	if len(snap.Balance) != 3 || snap.Balance[2].Balance.Cents != 95000 {
		t.Fatalf("unexpected balance %+v", snap.Balance)
	}
	if len(snap.IncomeSeries) != 1 || len(snap.ExpenseSeries) != 2 {
		t.Fatalf("unexpected series %d/%d", len(snap.IncomeSeries), len(snap.ExpenseSeries))
	}
	if len(snap.Recent) != 3 || snap.Recent[0].Name != "Groceries" {
		t.Fatalf("unexpected recent %+v", snap.Recent)
	}

	p := snap.Project(core.FilterExpense)
	if len(p.Labels) != 1 || p.Labels[0] != "Food" {
		t.Fatalf("unexpected expense projection %+v", p)
	}
}

func TestSnapshotYearIncludesOlder(t *testing.T) {
	svc := newService(seeded(t))
	if got := len(svc.Snapshot(window.Year).Window); got != 3 {
		t.Fatalf("year window has %d transactions, want 3", got)
	}
}

func TestSnapshotMemoizedPerRevision(t *testing.T) {
	src := seeded(t)
	svc := newService(src)

	a := svc.Snapshot(window.Month)
	b := svc.Snapshot(window.Month)
	if a != b || src.lists != 1 {
		t.Fatalf("expected memoized snapshot, lists=%d", src.lists)
	}

	svc.Snapshot(window.Week)
	if src.lists != 2 {
		t.Fatalf("different range should recompute, lists=%d", src.lists)
	}

	if _, err := src.Add(context.Background(), core.NewTransaction{
		Date: "2024-03-14", Name: "Book", Amount: core.Cents(1500), Type: core.Expense,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	c := svc.Snapshot(window.Month)
	if c == a || src.lists != 3 || len(c.Window) != len(a.Window)+1 {
		t.Fatalf("mutation should recompute, lists=%d", src.lists)
	}
}

func TestObserveInvalidates(t *testing.T) {
	src := seeded(t)
	svc := newService(src)
	src.Subscribe(svc.Observe)

	svc.Snapshot(window.Month)
	svc.Snapshot(window.Year)
	if svc.memo.Size() != 2 {
		t.Fatalf("memo size = %d", svc.memo.Size())
	}
	snap := svc.Snapshot(window.Month)
	if _, err := src.Delete(context.Background(), snap.Window[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if svc.memo.Size() != 0 {
		t.Fatalf("memo not cleared after mutation")
	}
}

func TestTable(t *testing.T) {
	svc := newService(seeded(t))
	page := svc.Table(query.Criteria{Type: core.FilterExpense}, 2, 1)
	if page.TotalItems != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Name != "Groceries" || page.Items[1].Name != "Rent" {
		t.Fatalf("unexpected order %+v", page.Items)
	}
}
