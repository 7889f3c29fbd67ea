package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/blob"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
	"cashflow/internal/sheets"
)

// SyncWorker mirrors the persisted ledger into a spreadsheet. Every sync
// reloads the three blobs from the shared store, so it never depends on the
// content of change messages.
type SyncWorker struct {
	blobs    blob.Store
	exporter sheets.LedgerExporter
	logger   *log.Logger
	now      func() time.Time

	// mu serializes syncs so an older export never lands after a newer one.
	mu          sync.Mutex
	lastStarted time.Time
}

func NewSyncWorker(blobs blob.Store, exporter sheets.LedgerExporter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &SyncWorker{
		blobs:    blobs,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
		now:      time.Now,
	}
}

// HandleChange processes a ledger change message from AMQP. Messages emitted
// before the start of the last successful export are already covered by it
// and are skipped.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastStarted.IsZero() && msg.Timestamp.Before(w.lastStarted) {
		w.logger.DebugContext(ctx, "Change already exported, skipping",
			log.FieldKey, msg.Key, log.FieldVersion, msg.Version)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldKey, msg.Key,
		log.FieldVersion, msg.Version)
	return w.sync(ctx)
}

// Sync exports the current ledger.
func (w *SyncWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sync(ctx)
}

func (w *SyncWorker) sync(ctx context.Context) error {
	started := w.now()

	store, err := ledger.Open(ctx, w.blobs, w.logger)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	workbook := sheets.Workbook(store, started)
	if err := w.exporter.Export(ctx, workbook); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}
	if started.After(w.lastStarted) {
		w.lastStarted = started
	}

	w.logger.InfoContext(ctx, "Ledger exported",
		log.FieldOperation, log.OpSync,
		"transactions", len(store.Transactions()),
		"duration", time.Since(started).String())
	return nil
}

// RunPeriodic exports the ledger on every tick until ctx is cancelled. It
// covers changes whose notifications were lost. Failed syncs are logged and
// retried on the next tick.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Periodic sync started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Periodic sync stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
			}
		}
	}
}
