package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Date: "2024-01-01", Name: "Salary", Amount: core.Cents(300000), Type: core.Income, Category: "Salary"},
		{ID: "b", Date: "2024-01-02", Name: "Lunch", Amount: core.Cents(1250), Type: core.Expense, Category: "", Note: "with team"},
	}
}

func TestEncodeShape(t *testing.T) {
	b, err := Encode(sample()[:1])
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"state":{"transactions":[{"id":"a","date":"2024-01-01","name":"Salary","amount":3000,"type":"income","category":"Salary"}]},"version":0}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}

	empty, _ := Encode(nil)
	if !strings.Contains(string(empty), `"transactions":[]`) {
		t.Fatalf("nil collection should encode as empty array: %s", empty)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        int
		wantSkipped int
		wantErr     bool
	}{
		{"empty", "", 0, 0, false},
		{"whitespace", "  \n", 0, 0, false},
		{"envelope", `{"state":{"transactions":[{"id":"x","date":"2024-01-01","name":"n","amount":12.5,"type":"expense","category":"Food"}]},"version":0}`, 1, 0, false},
		{"bare array", `[{"id":"x","date":"2024-01-01","name":"n","amount":1,"type":"income","category":""}]`, 1, 0, false},
		{"missing transactions", `{"state":{},"version":0}`, 0, 0, false},
		{"garbage", `not json`, 0, 0, true},
		{"truncated", `{"state":{"transactions":[{"id":"x"`, 0, 0, true},
		{"unknown type", `[{"id":"x","amount":1,"type":"transfer"},{"id":"y","amount":1,"type":"income"}]`, 1, 1, false},
		{"negative amount", `[{"id":"x","amount":-5,"type":"income"},{"id":"y","amount":5,"type":"income"}]`, 1, 1, false},
		{"string amount", `[{"id":"x","amount":"abc","type":"income"}]`, 0, 1, false},
		{"not an object", `[5,{"id":"y","amount":5,"type":"expense"}]`, 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := Decode([]byte(tt.in))
			if tt.wantErr {
				if !errors.Is(err, ErrCorruptState) {
					t.Fatalf("expected ErrCorruptState, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d transactions, want %d", len(got), tt.want)
			}
			if len(skipped) != tt.wantSkipped {
				t.Fatalf("skipped %d records, want %d: %+v", len(skipped), tt.wantSkipped, skipped)
			}
		})
	}
}

func TestDecodeReportsSkippedRecord(t *testing.T) {
	_, skipped, err := Decode([]byte(`[{"id":"ok","amount":1,"type":"income"},{"id":"neg","amount":-1,"type":"income"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(skipped) != 1 || skipped[0].Index != 1 || skipped[0].ID != "neg" || !errors.Is(skipped[0].Err, core.ErrInvalidAmount) {
		t.Fatalf("unexpected skipped %+v", skipped)
	}
}

func TestDecodeAmountInUnits(t *testing.T) {
	got, _, err := Decode([]byte(`[{"id":"x","date":"2024-01-01","name":"n","amount":12.5,"type":"expense","category":"Food"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].Amount.Cents != 1250 {
		t.Fatalf("amount = %d cents, want 1250", got[0].Amount.Cents)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	b, err := Encode(sample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, _, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, sample()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, sample())
	}
}

func exercisePersister(t *testing.T, p interface {
	Load(context.Context) ([]core.Transaction, error)
	Save(context.Context, []core.Transaction) error
}) {
	t.Helper()
	ctx := context.Background()

	got, err := p.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("fresh load = %v, %v", got, err)
	}

	if err := p.Save(ctx, sample()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, sample()) {
		t.Fatalf("load after save:\n got %+v\nwant %+v", got, sample())
	}

	if err := p.Save(ctx, sample()[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _ = p.Load(ctx)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("overwrite failed: %+v", got)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exercisePersister(t, m)
	if m.Saves() != 2 {
		t.Fatalf("saves = %d", m.Saves())
	}

	seeded := NewMemory(sample()...)
	got, err := seeded.Load(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("seeded load = %v, %v", got, err)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	f, err := NewFile(path, log.Discard())
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	exercisePersister(t, f)

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected only the state file, found %d entries", len(entries))
	}
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(path, log.Discard())
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	if _, err := f.Load(context.Background()); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
}

func TestNewFileRequiresPath(t *testing.T) {
	if _, err := NewFile("", nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "budget.db")
	r, err := NewSQLite(dbPath, "", log.Discard())
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	defer r.Close()
	exercisePersister(t, r)

	other, err := NewSQLite(dbPath, "other-state", log.Discard())
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer other.Close()
	got, err := other.Load(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("named states must be independent: %v, %v", got, err)
	}
}

func TestSQLiteReopenKeepsState(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "budget.db")
	ctx := context.Background()

	r, err := NewSQLite(dbPath, DefaultStateName, log.Discard())
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	if err := r.Save(ctx, sample()); err != nil {
		t.Fatalf("save: %v", err)
	}
	r.Close()

	r2, err := NewSQLite(dbPath, DefaultStateName, log.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()
	got, err := r2.Load(ctx)
	if err != nil || !reflect.DeepEqual(got, sample()) {
		t.Fatalf("reopened load = %+v, %v", got, err)
	}
}
