package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"income", Income, true},
		{" Expense ", Expense, true},
		{"both", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestTypeFilterMatches(t *testing.T) {
	if !FilterBoth.Matches(Income) || !FilterBoth.Matches(Expense) {
		t.Fatalf("both should match every type")
	}
	if !FilterIncome.Matches(Income) || FilterIncome.Matches(Expense) {
		t.Fatalf("income filter mismatch")
	}
	if FilterExpense.Matches(Income) || !FilterExpense.Matches(Expense) {
		t.Fatalf("expense filter mismatch")
	}
	if _, err := ParseTypeFilter("all"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}

func TestDisplayCategory(t *testing.T) {
	if got := DisplayCategory(""); got != Uncategorized {
		t.Fatalf("empty category = %q", got)
	}
	if got := DisplayCategory("   "); got != Uncategorized {
		t.Fatalf("blank category = %q", got)
	}
	if got := DisplayCategory("Food"); got != "Food" {
		t.Fatalf("category = %q", got)
	}
}

func TestTransactionJSONRejectsUnknownType(t *testing.T) {
	var tx Transaction
	err := json.Unmarshal([]byte(`{"id":"a","date":"2024-01-01","name":"x","amount":1,"type":"refund","category":""}`), &tx)
	if err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestTransactionJSONOmitsEmptyNote(t *testing.T) {
	b, err := json.Marshal(Transaction{ID: "a", Date: "2024-01-01", Name: "x", Amount: Cents(100), Type: Income})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"a","date":"2024-01-01","name":"x","amount":1,"type":"income","category":""}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{Date: "2025-01-01", Name: "ok", Amount: Cents(100), Type: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		n    NewTransaction
		want error
	}{
		{NewTransaction{Date: "not-a-date", Name: "a", Amount: Cents(1), Type: Expense}, ErrInvalidDate},
		{NewTransaction{Date: "2025-01-01", Name: "  ", Amount: Cents(1), Type: Expense}, ErrEmptyName},
		{NewTransaction{Date: "2025-01-01", Name: "a", Amount: Cents(-1), Type: Expense}, ErrInvalidAmount},
		{NewTransaction{Date: "2025-01-01", Name: "a", Amount: Cents(1), Type: "gift"}, ErrInvalidType},
	}
	for i, tc := range bads {
		if err := tc.n.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-03-05")
	if !ok {
		t.Fatalf("expected calendar date to parse")
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 5 || d.Hour() != 0 || d.Location() != time.Local {
		t.Fatalf("unexpected parse result %v", d)
	}

	if _, ok := ParseDate("2024-03-05T10:00:00Z"); !ok {
		t.Fatalf("expected RFC 3339 timestamp to parse")
	}
	for _, bad := range []string{"", "yesterday", "2024-13-01", "05/03/2024"} {
		if _, ok := ParseDate(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestPatchApply(t *testing.T) {
	orig := Transaction{ID: "id-1", Date: "2024-01-01", Name: "Rent", Amount: Cents(1000), Type: Expense, Category: "Bills", Note: "n"}

	if got := (Patch{}).Apply(orig); got != orig {
		t.Fatalf("empty patch changed record: %+v", got)
	}
	if !(Patch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}

	got := Patch{}.SetAmount(Cents(2500)).Apply(orig)
	want := orig
	want.Amount = Cents(2500)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := (Patch{}).SetAmount(Cents(-5)).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := (Patch{}).SetType("gift").Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	var s Totals
	s.Add(Transaction{Type: Income, Amount: Cents(100)})
	s.Add(Transaction{Type: Expense, Amount: Cents(40)})
	if s.Income.Cents != 100 || s.Expense.Cents != 40 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.Net().Cents != 60 || s.Sum().Cents != 140 {
		t.Fatalf("net=%d sum=%d", s.Net().Cents, s.Sum().Cents)
	}
}
