package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})

	l.Info("committed", FieldOperation, OpAssign)
	out := buf.String()
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("expected exactly one component attribute, got %q", out)
	}
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "operation=assign_money") {
		t.Fatalf("missing attributes in %q", out)
	}
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentCLI, Output: &buf}).With(FieldBackend, "sqlite")

	w := l.WithComponent(ComponentWorker)
	w.Info("started")
	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=worker") {
		t.Fatalf("expected a single worker component, got %q", out)
	}
	if !strings.Contains(out, "backend=sqlite") {
		t.Fatalf("WithComponent dropped attributes: %q", out)
	}
	if w.Component() != ComponentWorker || l.Component() != ComponentCLI {
		t.Fatalf("Component() = %q / %q", w.Component(), l.Component())
	}
}

func TestLogErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentWorker, Output: &buf})

	l.LogError(context.Background(), "nothing", nil)
	if buf.Len() != 0 {
		t.Fatalf("nil error produced output: %q", buf.String())
	}
	l.LogError(context.Background(), "save failed", errors.New("boom"), FieldKey, "accounts")
	if !strings.Contains(buf.String(), "error=boom") || !strings.Contains(buf.String(), "key=accounts") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithOperation(OpReset).WithKeys([]string{"accounts"}).WithError(errors.New("x"))
	if len(f.ToSlice()) != 6 {
		t.Fatalf("ToSlice() len = %d, want 6", len(f.ToSlice()))
	}
}
