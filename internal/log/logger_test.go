package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentStore, Output: &buf})

	l.Info("transaction added", FieldTransactionID, "abc")
	out := buf.String()
	if !strings.Contains(out, "component=store") {
		t.Fatalf("missing component in %q", out)
	}
	if !strings.Contains(out, "transaction_id=abc") {
		t.Fatalf("missing field in %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentStorage).Warn("load failed")
	if !strings.Contains(buf.String(), "component=storage") {
		t.Fatalf("WithComponent not applied: %q", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected error record, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpCreate).
		WithError(errors.New("boom")).
		WithTransaction("id-1", "income", "Salary", 1000)
	if f[FieldOperation] != OpCreate || f[FieldError] != "boom" || f[FieldAmountCents] != int64(1000) {
		t.Fatalf("unexpected fields %v", f)
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Fatalf("ToSlice length = %d", got)
	}
	if OrDefault(nil) == nil {
		t.Fatalf("OrDefault(nil) returned nil")
	}
}
