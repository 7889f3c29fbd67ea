package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreGetSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "k", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("unexpected get: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestMemoryStoreFailWrites(t *testing.T) {
	s := New()
	s.FailWrites = errors.New("disk full")
	if err := s.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected write failure")
	}
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Fatal("failed write must not be visible")
	}
}

func TestNewFromDirSeeds(t *testing.T) {
	dir := t.TempDir()
	// Missing directory -> empty store
	if got := NewFromDir(filepath.Join(dir, "nope")).Keys(); len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("cashflow_wallets.json", `[{"id":"w1","name":"Dompet","type":"cash"}]`)
	mustWrite("notes.txt", "ignored")

	s := NewFromDir(dir)
	v, ok, _ := s.Get(context.Background(), "cashflow_wallets")
	if !ok || v == "" {
		t.Fatalf("expected seeded wallets blob")
	}
	if len(s.Keys()) != 1 {
		t.Fatalf("unexpected keys: %v", s.Keys())
	}
}
