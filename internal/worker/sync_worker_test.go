package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cashflow/internal/amqp"
	blobmem "cashflow/internal/blob/memory"
	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
	"cashflow/internal/sheets"
	sheetsmem "cashflow/internal/sheets/memory"
)

type failingReader struct {
	*blobmem.Store
}

func (failingReader) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func seededBlobs(t *testing.T) *blobmem.Store {
	t.Helper()
	ctx := context.Background()
	blobs := blobmem.New()
	store, err := ledger.Open(ctx, blobs, log.Nop())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	w := store.AddWallet(ctx, core.Wallet{Name: "BCA", Type: core.WalletBank})
	store.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 500, Wallet: w.ID, Date: core.NewDate(2025, 2, 1), Description: "Gaji"})
	return blobs
}

func TestSyncExportsWorkbook(t *testing.T) {
	exporter := sheetsmem.New()
	w := NewSyncWorker(seededBlobs(t), exporter, nil)

	if err := w.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := len(exporter.Rows(sheets.TransactionsSheet)); got != 2 {
		t.Errorf("transaction rows = %d, want header + 1", got)
	}
	wallets := exporter.Rows(sheets.WalletsSheet)
	if len(wallets) != 2 || wallets[1][3] != int64(500) {
		t.Errorf("wallet rows = %v", wallets)
	}
}

func TestSyncPropagatesErrors(t *testing.T) {
	exporter := sheetsmem.New()
	exporter.Err = errors.New("quota exceeded")
	w := NewSyncWorker(seededBlobs(t), exporter, nil)
	if err := w.Sync(context.Background()); err == nil {
		t.Error("expected export error")
	}

	w = NewSyncWorker(failingReader{blobmem.New()}, sheetsmem.New(), nil)
	if err := w.Sync(context.Background()); err == nil {
		t.Error("expected load error")
	}
}

func TestHandleChangeSkipsCoveredMessages(t *testing.T) {
	exporter := sheetsmem.New()
	w := NewSyncWorker(seededBlobs(t), exporter, nil)
	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return base }

	ctx := context.Background()
	fresh := &amqp.LedgerChangeMessage{Key: ledger.KeyTransactions, Version: 1, Timestamp: base.Add(-time.Minute)}
	if err := w.HandleChange(ctx, fresh); err != nil {
		t.Fatalf("HandleChange: %v", err)
	}
	if exporter.Exports() != 1 {
		t.Fatalf("exports = %d, want 1", exporter.Exports())
	}

	stale := &amqp.LedgerChangeMessage{Key: ledger.KeyWallets, Version: 2, Timestamp: base.Add(-time.Second)}
	if err := w.HandleChange(ctx, stale); err != nil {
		t.Fatalf("HandleChange: %v", err)
	}
	if exporter.Exports() != 1 {
		t.Errorf("stale message triggered an export")
	}

	newer := &amqp.LedgerChangeMessage{Key: ledger.KeyWallets, Version: 3, Timestamp: base.Add(time.Second)}
	if err := w.HandleChange(ctx, newer); err != nil {
		t.Fatalf("HandleChange: %v", err)
	}
	if exporter.Exports() != 2 {
		t.Errorf("exports = %d, want 2", exporter.Exports())
	}
}

// gatedExporter holds its first export until release is closed.
type gatedExporter struct {
	*sheetsmem.Exporter
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedExporter) Export(ctx context.Context, s []sheets.Sheet) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.Exporter.Export(ctx, s)
}

func TestOverlappingSyncsExportNewestLast(t *testing.T) {
	ctx := context.Background()
	blobs := seededBlobs(t)
	exporter := &gatedExporter{
		Exporter: sheetsmem.New(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	w := NewSyncWorker(blobs, exporter, nil)

	periodic := make(chan error, 1)
	go func() { periodic <- w.Sync(ctx) }()
	<-exporter.entered

	store, err := ledger.Open(ctx, blobs, log.Nop())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	wallet := store.Wallets()[0]
	store.AddTransaction(ctx, core.Transaction{Type: core.Expense, Amount: 20, Wallet: wallet.ID, Date: core.NewDate(2025, 2, 2), Description: "Kopi", Category: core.CategoryKebutuhan})

	changed := make(chan error, 1)
	msg := &amqp.LedgerChangeMessage{Key: ledger.KeyTransactions, Version: 2, Timestamp: time.Now().Add(time.Millisecond)}
	go func() { changed <- w.HandleChange(ctx, msg) }()

	time.Sleep(20 * time.Millisecond)
	if got := exporter.Exports(); got != 0 {
		t.Fatalf("exports while first sync in flight = %d, want 0", got)
	}
	close(exporter.release)

	for _, ch := range []chan error{periodic, changed} {
		if err := <-ch; err != nil {
			t.Fatalf("sync: %v", err)
		}
	}
	if got := exporter.Exports(); got != 2 {
		t.Errorf("exports = %d, want 2", got)
	}
	if got := len(exporter.Rows(sheets.TransactionsSheet)); got != 3 {
		t.Errorf("transaction rows = %d, want header + 2", got)
	}
}

func TestRunPeriodicStopsOnCancel(t *testing.T) {
	exporter := sheetsmem.New()
	w := NewSyncWorker(seededBlobs(t), exporter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, 5*time.Millisecond) }()

	deadline := time.Now().Add(2 * time.Second)
	for exporter.Exports() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunPeriodic err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodic did not stop")
	}
	if exporter.Exports() == 0 {
		t.Error("expected at least one periodic export")
	}
}
