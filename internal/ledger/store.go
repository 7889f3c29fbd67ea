// Package ledger owns the transaction log, the wallet registry and the budget
// items, persists each collection as a JSON blob, and answers derived queries
// (balances, budget consumption, monthly aggregates) by rescanning the log.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"cashflow/internal/blob"
	"cashflow/internal/core"
	"cashflow/internal/log"
)

// Blob keys of the three persisted collections.
const (
	KeyTransactions = "cashflow_transactions"
	KeyBudgetItems  = "cashflow_budget_items"
	KeyWallets      = "cashflow_wallets"

	// KeyMigrationV1 is set once the retired budget list check has run.
	KeyMigrationV1 = "cashflow_migration_v1_cleared"
)

// retiredBudgetID marks the hard-coded budget list shipped by early versions.
const retiredBudgetID = "budget_kost"

// ErrNotFound is returned by updates and deletes that name an unknown id.
var ErrNotFound = errors.New("not found")

// Store holds the ledger in memory and writes every mutation through to the
// blob store. All methods are safe for concurrent use; operations are applied
// one at a time.
//
// Write failures are logged and swallowed, so memory and the persisted blobs
// can diverge until the next successful write of the same collection.
type Store struct {
	mu      sync.Mutex
	blobs   blob.Store
	logger  *log.Logger
	version uint64

	txs     []core.Transaction
	wallets []core.Wallet
	items   []core.BudgetItem
}

// Open loads the three collections from blobs. A missing or malformed blob
// yields an empty collection; only a failing backend read is an error.
func Open(ctx context.Context, blobs blob.Store, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Store{
		blobs:  blobs,
		logger: logger.WithComponent(log.ComponentLedger),
	}

	if _, err := s.load(ctx, KeyTransactions, &s.txs); err != nil {
		return nil, err
	}

	walletsFound, err := s.load(ctx, KeyWallets, &s.wallets)
	if err != nil {
		return nil, err
	}

	if _, err := s.load(ctx, KeyBudgetItems, &s.items); err != nil {
		return nil, err
	}
	if err := s.migrateV1(ctx); err != nil {
		return nil, err
	}

	if !walletsFound {
		s.seedLegacyWallets(ctx)
	}

	s.logger.DebugContext(ctx, "Ledger loaded",
		"transactions", len(s.txs),
		"wallets", len(s.wallets),
		"budget_items", len(s.items))
	return s, nil
}

func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.blobs.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	s.decode(ctx, key, raw, dst)
	return true, nil
}

func (s *Store) decode(ctx context.Context, key, raw string, dst any) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.WarnContext(ctx, "Malformed blob, starting empty",
			log.FieldKey, key, log.FieldError, err)
		switch v := dst.(type) {
		case *[]core.Transaction:
			*v = nil
		case *[]core.Wallet:
			*v = nil
		case *[]core.BudgetItem:
			*v = nil
		}
	}
}

// migrateV1 drops the budget list shipped by early versions, recognised by an
// item with the retired id. It runs once per blob store.
func (s *Store) migrateV1(ctx context.Context) error {
	_, done, err := s.blobs.Get(ctx, KeyMigrationV1)
	if err != nil {
		return fmt.Errorf("load %s: %w", KeyMigrationV1, err)
	}
	if done {
		return nil
	}
	if slices.ContainsFunc(s.items, func(b core.BudgetItem) bool { return b.ID == retiredBudgetID }) {
		s.logger.InfoContext(ctx, "Discarding legacy budget list", log.FieldKey, KeyBudgetItems)
		s.items = nil
		s.persist(ctx, KeyBudgetItems, []core.BudgetItem{})
	}
	if err := s.blobs.Set(ctx, KeyMigrationV1, "true"); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record migration",
			log.FieldKey, KeyMigrationV1, log.FieldError, err)
	}
	return nil
}

// seedLegacyWallets registers the fixed wallets of the pre-registry era when
// the log still references them and no wallet blob was ever written.
func (s *Store) seedLegacyWallets(ctx context.Context) {
	used := make(map[string]bool)
	for _, tx := range s.txs {
		used[tx.Wallet] = true
		used[tx.FromWallet] = true
		used[tx.ToWallet] = true
	}
	now := time.Now().UTC()
	for _, lw := range core.LegacyWallets() {
		if used[lw.ID] {
			s.wallets = append(s.wallets, core.Wallet{ID: lw.ID, Name: lw.Label, Type: lw.Type, CreatedAt: now})
		}
	}
	if len(s.wallets) > 0 {
		s.logger.InfoContext(ctx, "Seeded legacy wallets", log.FieldCount, len(s.wallets))
		s.persist(ctx, KeyWallets, s.wallets)
	}
}

// persist serializes one collection and writes it. Errors are logged only.
func (s *Store) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode collection",
			log.FieldKey, key, log.FieldError, err)
		return
	}
	if err := s.blobs.Set(ctx, key, string(data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist collection",
			log.FieldOperation, log.OpPersist,
			log.FieldKey, key,
			log.FieldError, err)
	}
}

func (s *Store) bump() {
	s.version++
}

// Version is incremented by every mutation. It starts at zero after Open.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Transactions returns a copy of the log in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...)
}

func (s *Store) Wallets() []core.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Wallet(nil), s.wallets...)
}

func (s *Store) BudgetItems() []core.BudgetItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetItem(nil), s.items...)
}

func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.txIndex(id); i >= 0 {
		return s.txs[i], true
	}
	return core.Transaction{}, false
}

func (s *Store) Wallet(id string) (core.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.walletIndex(id); i >= 0 {
		return s.wallets[i], true
	}
	return core.Wallet{}, false
}

func (s *Store) BudgetItem(id string) (core.BudgetItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.itemIndex(id); i >= 0 {
		return s.items[i], true
	}
	return core.BudgetItem{}, false
}

func (s *Store) txIndex(id string) int {
	for i := range s.txs {
		if s.txs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) walletIndex(id string) int {
	for i := range s.wallets {
		if s.wallets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) itemIndex(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// AddTransaction appends tx to the log. A missing id or creation time is
// filled in. The store does not validate; that is the caller's job.
func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) core.Transaction {
	if tx.ID == "" {
		tx.ID = core.NewTransactionID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	s.bump()
	s.persist(ctx, KeyTransactions, s.txs)
	return tx
}

// UpdateTransaction merges patch into the transaction with the given id.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	s.txs[i] = patch.Apply(s.txs[i])
	s.bump()
	s.persist(ctx, KeyTransactions, s.txs)
	return s.txs[i], nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	s.bump()
	s.persist(ctx, KeyTransactions, s.txs)
	return nil
}

func (s *Store) AddWallet(ctx context.Context, w core.Wallet) core.Wallet {
	if w.ID == "" {
		w.ID = core.NewWalletID()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = append(s.wallets, w)
	s.bump()
	s.persist(ctx, KeyWallets, s.wallets)
	return w
}

func (s *Store) UpdateWallet(ctx context.Context, id string, patch core.WalletPatch) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.walletIndex(id)
	if i < 0 {
		return core.Wallet{}, fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	s.wallets[i] = patch.Apply(s.wallets[i])
	s.bump()
	s.persist(ctx, KeyWallets, s.wallets)
	return s.wallets[i], nil
}

// DeleteWallet removes the wallet from the registry. Transactions that
// reference it are kept and its name degrades to "Unknown".
func (s *Store) DeleteWallet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.walletIndex(id)
	if i < 0 {
		return fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	s.wallets = append(s.wallets[:i], s.wallets[i+1:]...)
	s.bump()
	s.persist(ctx, KeyWallets, s.wallets)
	return nil
}

func (s *Store) AddBudgetItem(ctx context.Context, b core.BudgetItem) core.BudgetItem {
	if b.ID == "" {
		b.ID = core.NewBudgetItemID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, b)
	s.bump()
	s.persist(ctx, KeyBudgetItems, s.items)
	return b
}

func (s *Store) UpdateBudgetItem(ctx context.Context, id string, patch core.BudgetItemPatch) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.itemIndex(id)
	if i < 0 {
		return core.BudgetItem{}, fmt.Errorf("budget item %s: %w", id, ErrNotFound)
	}
	s.items[i] = patch.Apply(s.items[i])
	s.bump()
	s.persist(ctx, KeyBudgetItems, s.items)
	return s.items[i], nil
}

// DeleteBudgetItem removes the item. Linked expenses keep their
// budgetItemName snapshot.
func (s *Store) DeleteBudgetItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.itemIndex(id)
	if i < 0 {
		return fmt.Errorf("budget item %s: %w", id, ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.bump()
	s.persist(ctx, KeyBudgetItems, s.items)
	return nil
}

// ClearAll empties the transaction log. Wallets and budget items are kept.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = nil
	s.bump()
	s.persist(ctx, KeyTransactions, []core.Transaction{})
}
