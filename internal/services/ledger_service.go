package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cashflow/internal/budget"
	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
)

// ChangePublisher announces that a persisted collection changed.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, key string, version uint64) error
}

// LedgerService validates caller intent and applies it to the ledger store.
// Nothing invalid ever reaches the store through it. Mutating operations run
// one at a time, so a check and the write it guards see the same ledger.
type LedgerService struct {
	mu        sync.Mutex
	store     *ledger.Store
	publisher ChangePublisher
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*LedgerService)

// WithClock overrides the clock used for "today" and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *LedgerService) { s.logger = logger.WithComponent(log.ComponentService) }
}

// NewLedgerService wires a service over store. publisher may be nil.
func NewLedgerService(store *ledger.Store, publisher ChangePublisher, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    log.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying ledger for read-only queries.
func (s *LedgerService) Store() *ledger.Store {
	return s.store
}

type (
	IncomeInput struct {
		Amount      core.Amount `json:"amount"`
		Description string      `json:"description"`
		Wallet      string      `json:"wallet"`
		Date        core.Date   `json:"date"`
	}

	ExpenseInput struct {
		Amount      core.Amount   `json:"amount"`
		Description string        `json:"description"`
		Wallet      string        `json:"wallet"`
		Date        core.Date     `json:"date"`
		Category    core.Category `json:"category,omitempty"`
		// BudgetItemID links the expense explicitly; when empty the
		// description is matched against budget item names.
		BudgetItemID string `json:"budgetItemId,omitempty"`
	}

	TransferInput struct {
		Amount      core.Amount `json:"amount"`
		AdminFee    core.Amount `json:"adminFee"`
		FromWallet  string      `json:"fromWallet"`
		ToWallet    string      `json:"toWallet"`
		Date        core.Date   `json:"date"`
		Description string      `json:"description,omitempty"`
	}

	WalletInput struct {
		Name           string          `json:"name"`
		Type           core.WalletType `json:"type"`
		InitialBalance core.Amount     `json:"initialBalance"`
	}

	BudgetItemInput struct {
		Name           string          `json:"name"`
		Amount         core.Amount     `json:"amount"`
		Type           core.BudgetType `json:"type"`
		WalletID       string          `json:"walletId"`
		TargetWalletID string          `json:"targetWalletId,omitempty"`
	}
)

const (
	openingBalanceDescription = "Saldo Awal"
	transferDescriptionPrefix = "Transfer ke "
	budgetExpensePrefix       = "Budget: "
	budgetTransferPrefix      = "Budget Transfer: "
)

func (s *LedgerService) today() core.Date {
	return core.DateOf(s.now())
}

func (s *LedgerService) requireWallet(id string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrMissingWallet
	}
	if _, ok := s.store.Wallet(id); !ok {
		return fmt.Errorf("wallet %s: %w", id, core.ErrUnknownWallet)
	}
	return nil
}

// RecordIncome adds an income to an existing wallet.
func (s *LedgerService) RecordIncome(ctx context.Context, in IncomeInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := core.Transaction{
		Type:        core.Income,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Wallet:      in.Wallet,
		Date:        in.Date,
	}
	return s.addTransaction(ctx, tx)
}

// RecordExpense adds an expense. With an explicit budget id the item must
// exist and the expense is categorized "budget"; otherwise a budget item whose
// name equals the description (ignoring case) is linked with category
// "custom", and unmatched expenses keep their category or fall back to
// "lainnya".
func (s *LedgerService) RecordExpense(ctx context.Context, in ExpenseInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := core.Transaction{
		Type:        core.Expense,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Wallet:      in.Wallet,
		Date:        in.Date,
		Category:    core.CategoryFallback,
	}

	switch {
	case in.BudgetItemID != "":
		item, ok := s.store.BudgetItem(in.BudgetItemID)
		if !ok {
			return core.Transaction{}, fmt.Errorf("budget item %s: %w", in.BudgetItemID, ledger.ErrNotFound)
		}
		tx.Category = core.CategoryBudget
		tx.BudgetItemID, tx.BudgetItemName = item.ID, item.Name
	default:
		if item, ok := s.matchBudgetItem(tx.Description); ok {
			tx.Category = core.CategoryCustom
			tx.BudgetItemID, tx.BudgetItemName = item.ID, item.Name
		} else if isSelectable(in.Category) {
			tx.Category = in.Category
		}
	}
	return s.addTransaction(ctx, tx)
}

func (s *LedgerService) matchBudgetItem(description string) (core.BudgetItem, bool) {
	if description == "" {
		return core.BudgetItem{}, false
	}
	for _, item := range s.store.BudgetItems() {
		if strings.EqualFold(strings.TrimSpace(item.Name), description) {
			return item, true
		}
	}
	return core.BudgetItem{}, false
}

func isSelectable(c core.Category) bool {
	for _, known := range core.Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// RecordTransfer moves money between two wallets. The admin fee is debited
// from the source only. The description defaults to "Transfer ke <name>".
func (s *LedgerService) RecordTransfer(ctx context.Context, in TransferInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := core.Transaction{
		Type:        core.Transfer,
		Amount:      in.Amount,
		AdminFee:    in.AdminFee,
		FromWallet:  in.FromWallet,
		ToWallet:    in.ToWallet,
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
	}
	if tx.Description == "" {
		tx.Description = transferDescriptionPrefix + s.store.WalletName(in.ToWallet)
	}
	return s.addTransaction(ctx, tx)
}

func (s *LedgerService) checkTransaction(tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	switch tx.Type {
	case core.Income, core.Expense:
		return s.requireWallet(tx.Wallet)
	case core.Transfer:
		if err := s.requireWallet(tx.FromWallet); err != nil {
			return err
		}
		return s.requireWallet(tx.ToWallet)
	}
	return nil
}

func (s *LedgerService) addTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := s.checkTransaction(tx); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = core.NewTransactionID()
	tx.CreatedAt = s.now().UTC()

	tx = s.store.AddTransaction(ctx, tx)
	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(tx.ID, string(tx.Type), int64(tx.Amount)).
			ToSlice()...)
	s.publish(ctx, ledger.KeyTransactions)
	return tx, nil
}

// UpdateTransaction applies a partial update; the merged transaction must
// still be valid.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Transaction(id)
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	if err := s.checkTransaction(patch.Apply(current)); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.store.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, ledger.KeyTransactions)
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTransactionID, id)
	s.publish(ctx, ledger.KeyTransactions)
	return nil
}

// CreateWallet registers a wallet. A positive initial balance is recorded as
// an income "Saldo Awal" dated today, since balances are never stored.
func (s *LedgerService) CreateWallet(ctx context.Context, in WalletInput) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := core.Wallet{
		Name: strings.TrimSpace(in.Name),
		Type: in.Type,
	}
	if w.Type == "" {
		w.Type = core.WalletOther
	}
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	if in.InitialBalance < 0 {
		return core.Wallet{}, core.ErrInvalidAmount
	}
	w.ID = core.NewWalletID()
	w.CreatedAt = s.now().UTC()
	w = s.store.AddWallet(ctx, w)
	s.publish(ctx, ledger.KeyWallets)

	if in.InitialBalance > 0 {
		if _, err := s.addTransaction(ctx, core.Transaction{
			Type:        core.Income,
			Amount:      in.InitialBalance,
			Description: openingBalanceDescription,
			Wallet:      w.ID,
			Date:        s.today(),
		}); err != nil {
			return w, fmt.Errorf("record opening balance: %w", err)
		}
	}
	return w, nil
}

func (s *LedgerService) UpdateWallet(ctx context.Context, id string, patch core.WalletPatch) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Wallet(id)
	if !ok {
		return core.Wallet{}, fmt.Errorf("wallet %s: %w", id, ledger.ErrNotFound)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := patch.Apply(current).Validate(); err != nil {
		return core.Wallet{}, err
	}
	w, err := s.store.UpdateWallet(ctx, id, patch)
	if err != nil {
		return core.Wallet{}, err
	}
	s.publish(ctx, ledger.KeyWallets)
	return w, nil
}

// DeleteWallet removes a wallet. Its transactions stay in the log.
func (s *LedgerService) DeleteWallet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteWallet(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, ledger.KeyWallets)
	return nil
}

func (s *LedgerService) checkBudgetItem(b core.BudgetItem) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.WalletID != "" {
		if err := s.requireWallet(b.WalletID); err != nil {
			return err
		}
	}
	if b.Type == core.BudgetTransfer {
		return s.requireWallet(b.TargetWalletID)
	}
	return nil
}

func (s *LedgerService) CreateBudgetItem(ctx context.Context, in BudgetItemInput) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := core.BudgetItem{
		Name:     strings.TrimSpace(in.Name),
		Amount:   in.Amount,
		Type:     in.Type,
		WalletID: in.WalletID,
	}
	if b.Type == "" {
		b.Type = core.BudgetExpense
	}
	if b.Type == core.BudgetTransfer {
		b.TargetWalletID = in.TargetWalletID
	}
	if err := s.checkBudgetItem(b); err != nil {
		return core.BudgetItem{}, err
	}
	b.ID = core.NewBudgetItemID()
	b = s.store.AddBudgetItem(ctx, b)
	s.publish(ctx, ledger.KeyBudgetItems)
	return b, nil
}

func (s *LedgerService) UpdateBudgetItem(ctx context.Context, id string, patch core.BudgetItemPatch) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.BudgetItem(id)
	if !ok {
		return core.BudgetItem{}, fmt.Errorf("budget item %s: %w", id, ledger.ErrNotFound)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	merged := patch.Apply(current)
	if merged.Type == core.BudgetExpense && merged.TargetWalletID != "" {
		empty := ""
		patch.TargetWalletID = &empty
		merged.TargetWalletID = ""
	}
	if err := s.checkBudgetItem(merged); err != nil {
		return core.BudgetItem{}, err
	}
	b, err := s.store.UpdateBudgetItem(ctx, id, patch)
	if err != nil {
		return core.BudgetItem{}, err
	}
	s.publish(ctx, ledger.KeyBudgetItems)
	return b, nil
}

// DeleteBudgetItem removes the item; linked expenses keep their name snapshot.
func (s *LedgerService) DeleteBudgetItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteBudgetItem(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, ledger.KeyBudgetItems)
	return nil
}

// UseBudget spends amount from a budget item's remaining allocation for the
// current month, recording a linked expense or, for transfer items, a
// fee-free transfer to the target wallet.
func (s *LedgerService) UseBudget(ctx context.Context, budgetID string, amount core.Amount) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		item  budget.Summary
		found bool
	)
	for _, sum := range s.store.BudgetSummary(s.now()) {
		if sum.ID == budgetID {
			item, found = sum, true
			break
		}
	}
	if !found {
		return core.Transaction{}, fmt.Errorf("budget item %s: %w", budgetID, ledger.ErrNotFound)
	}

	remaining := max(item.Remaining, 0)
	if remaining <= 0 {
		return core.Transaction{}, core.ErrBudgetExhausted
	}
	if amount <= 0 {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	if amount > remaining {
		return core.Transaction{}, fmt.Errorf("%w: at most %s", core.ErrExceedsBudget, core.FormatRupiah(remaining))
	}

	if item.Type == core.BudgetTransfer {
		if item.WalletID == "" || item.TargetWalletID == "" {
			return core.Transaction{}, core.ErrBudgetWalletMissing
		}
		return s.addTransaction(ctx, core.Transaction{
			Type:        core.Transfer,
			Amount:      amount,
			FromWallet:  item.WalletID,
			ToWallet:    item.TargetWalletID,
			Description: budgetTransferPrefix + item.Name,
			Date:        s.today(),
		})
	}

	if item.WalletID == "" {
		return core.Transaction{}, core.ErrBudgetWalletMissing
	}
	return s.addTransaction(ctx, core.Transaction{
		Type:           core.Expense,
		Amount:         amount,
		Wallet:         item.WalletID,
		Description:    budgetExpensePrefix + item.Name,
		Category:       core.CategoryBudget,
		BudgetItemID:   item.ID,
		BudgetItemName: item.Name,
		Date:           s.today(),
	})
}

func (s *LedgerService) publish(ctx context.Context, key string) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No change publisher, skipping notification", log.FieldKey, key)
		return
	}
	version := s.store.Version()
	if err := s.publisher.PublishLedgerChange(ctx, key, version); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			log.FieldOperation, log.OpPublish,
			log.FieldKey, key,
			log.FieldVersion, version,
			log.FieldError, err)
	}
}
