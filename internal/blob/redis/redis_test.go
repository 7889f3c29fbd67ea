package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := New(context.Background(), "redis://"+mr.Addr(), prefix)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestNewWithClientDefaultsPrefix(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := NewWithClient(client, "")
	if got := s.key("cashflow_wallets"); got != "cashflow:cashflow_wallets" {
		t.Fatalf("unexpected key %q", got)
	}
	s = NewWithClient(client, "test:")
	if got := s.key("k"); got != "test:k" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(context.Background(), "not-a-url://x", ""); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestGetMissingKey(t *testing.T) {
	s, _ := newTestStore(t, "")
	val, ok, err := s.Get(context.Background(), "cashflow_transactions")
	if err != nil || ok || val != "" {
		t.Fatalf("Get = %q, %v, %v; want absent", val, ok, err)
	}
}

func TestSetUsesPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "cf:")

	if err := s.Set(ctx, "cashflow_wallets", `[{"id":"w1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, err := mr.Get("cf:cashflow_wallets")
	if err != nil || raw != `[{"id":"w1"}]` {
		t.Fatalf("stored value = %q, %v", raw, err)
	}
	if mr.Exists("cashflow_wallets") {
		t.Error("value stored without prefix")
	}

	val, ok, err := s.Get(ctx, "cashflow_wallets")
	if err != nil || !ok || val != raw {
		t.Errorf("Get = %q, %v, %v", val, ok, err)
	}
}

func TestGetReportsServerErrors(t *testing.T) {
	s, mr := newTestStore(t, "")
	mr.Close()
	if _, _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error from stopped server")
	}
}
