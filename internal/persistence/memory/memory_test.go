package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"envelope/internal/persistence"
)

func TestMemoryStoreSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Load(ctx, persistence.KeyAccounts); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	buf := []byte(`[{"id":"a"}]`)
	if err := s.Save(ctx, persistence.KeyAccounts, buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf[0] = 'X'

	got, ok, err := s.Load(ctx, persistence.KeyAccounts)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Fatalf("stored value aliased caller buffer: %s", got)
	}

	if err := s.Clear(ctx, []string{persistence.KeyAccounts, "never-saved"}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.Load(ctx, persistence.KeyAccounts); ok {
		t.Fatalf("key survived clear")
	}
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("empty dir: %v", err)
	}
	if len(s.Keys()) != 0 {
		t.Fatalf("expected no keys, got %v", s.Keys())
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("planName.json", `"Household"`)
	mustWrite("accounts.json", `[]`)
	mustWrite("unrelated.json", `{}`)

	s, err = NewFromDir(dir)
	if err != nil {
		t.Fatalf("seeded dir: %v", err)
	}
	if len(s.Keys()) != 2 {
		t.Fatalf("expected 2 seeded keys, got %v", s.Keys())
	}
	got, ok, _ := s.Load(context.Background(), persistence.KeyPlanName)
	if !ok || string(got) != `"Household"` {
		t.Fatalf("unexpected plan name: %q ok=%v", got, ok)
	}
}
