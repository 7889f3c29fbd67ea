package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	WalletBank    WalletType = "bank"
	WalletEWallet WalletType = "ewallet"
	WalletCash    WalletType = "cash"
	WalletOther   WalletType = "other"
)

const (
	BudgetExpense  BudgetType = "expense"
	BudgetTransfer BudgetType = "transfer"
)

type (
	TransactionType string
	WalletType      string
	BudgetType      string

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Amount          `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		CreatedAt   time.Time       `json:"createdAt"`

		// Income and expense
		Wallet string `json:"wallet,omitempty"`

		// Expense only
		Category       Category `json:"category,omitempty"`
		BudgetItemID   string   `json:"budgetItemId,omitempty"`
		BudgetItemName string   `json:"budgetItemName,omitempty"` // snapshot, survives budget deletion

		// Transfer only
		FromWallet string `json:"fromWallet,omitempty"`
		ToWallet   string `json:"toWallet,omitempty"`
		AdminFee   Amount `json:"adminFee,omitempty"`
	}

	Wallet struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Type      WalletType `json:"type"`
		CreatedAt time.Time  `json:"createdAt"`
	}

	BudgetItem struct {
		ID             string     `json:"id"`
		Name           string     `json:"name"`
		Amount         Amount     `json:"amount"`
		Type           BudgetType `json:"type"`
		WalletID       string     `json:"walletId,omitempty"`
		TargetWalletID string     `json:"targetWalletId,omitempty"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidFee          = errors.New("invalid admin fee")
	ErrEmptyDescription    = errors.New("empty description")
	ErrInvalidDate         = errors.New("invalid date")
	ErrMissingWallet       = errors.New("missing wallet")
	ErrUnknownWallet       = errors.New("unknown wallet")
	ErrSameWallet          = errors.New("source and destination wallet must differ")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidWalletType   = errors.New("invalid wallet type")
	ErrInvalidBudgetType   = errors.New("invalid budget type")
	ErrMissingTargetWallet = errors.New("transfer budget requires a target wallet")
	ErrBudgetWalletMissing = errors.New("budget item has no source wallet")
	ErrBudgetExhausted     = errors.New("budget already exhausted")
	ErrExceedsBudget       = errors.New("amount exceeds remaining budget")
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (t WalletType) IsValid() bool {
	switch t {
	case WalletBank, WalletEWallet, WalletCash, WalletOther:
		return true
	}
	return false
}

func (t BudgetType) IsValid() bool {
	switch t {
	case BudgetExpense, BudgetTransfer:
		return true
	}
	return false
}

// Validate checks the fields required for the transaction's type. It does not
// check that referenced wallets exist; that needs the wallet registry.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	switch t.Type {
	case Income, Expense:
		if strings.TrimSpace(t.Description) == "" {
			return ErrEmptyDescription
		}
		if strings.TrimSpace(t.Wallet) == "" {
			return ErrMissingWallet
		}
	case Transfer:
		if t.AdminFee < 0 {
			return ErrInvalidFee
		}
		if strings.TrimSpace(t.FromWallet) == "" || strings.TrimSpace(t.ToWallet) == "" {
			return ErrMissingWallet
		}
		if t.FromWallet == t.ToWallet {
			return ErrSameWallet
		}
	}
	return nil
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	if !w.Type.IsValid() {
		return ErrInvalidWalletType
	}
	return nil
}

func (b BudgetItem) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	if !b.Type.IsValid() {
		return ErrInvalidBudgetType
	}
	if b.Type == BudgetTransfer {
		if b.TargetWalletID == "" {
			return ErrMissingTargetWallet
		}
		if b.WalletID == b.TargetWalletID {
			return ErrSameWallet
		}
	}
	return nil
}

// Partial updates. A nil field is left untouched.
type (
	TransactionPatch struct {
		Type           *TransactionType `json:"type,omitempty"`
		Amount         *Amount          `json:"amount,omitempty"`
		Date           *Date            `json:"date,omitempty"`
		Description    *string          `json:"description,omitempty"`
		Wallet         *string          `json:"wallet,omitempty"`
		Category       *Category        `json:"category,omitempty"`
		BudgetItemID   *string          `json:"budgetItemId,omitempty"`
		BudgetItemName *string          `json:"budgetItemName,omitempty"`
		FromWallet     *string          `json:"fromWallet,omitempty"`
		ToWallet       *string          `json:"toWallet,omitempty"`
		AdminFee       *Amount          `json:"adminFee,omitempty"`
	}

	WalletPatch struct {
		Name *string     `json:"name,omitempty"`
		Type *WalletType `json:"type,omitempty"`
	}

	BudgetItemPatch struct {
		Name           *string     `json:"name,omitempty"`
		Amount         *Amount     `json:"amount,omitempty"`
		Type           *BudgetType `json:"type,omitempty"`
		WalletID       *string     `json:"walletId,omitempty"`
		TargetWalletID *string     `json:"targetWalletId,omitempty"`
	}
)

// Apply returns a copy of t with the patch applied. ID and CreatedAt never change.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Wallet != nil {
		t.Wallet = *p.Wallet
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.BudgetItemID != nil {
		t.BudgetItemID = *p.BudgetItemID
	}
	if p.BudgetItemName != nil {
		t.BudgetItemName = *p.BudgetItemName
	}
	if p.FromWallet != nil {
		t.FromWallet = *p.FromWallet
	}
	if p.ToWallet != nil {
		t.ToWallet = *p.ToWallet
	}
	if p.AdminFee != nil {
		t.AdminFee = *p.AdminFee
	}
	return t
}

func (p WalletPatch) Apply(w Wallet) Wallet {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	return w
}

func (p BudgetItemPatch) Apply(b BudgetItem) BudgetItem {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.WalletID != nil {
		b.WalletID = *p.WalletID
	}
	if p.TargetWalletID != nil {
		b.TargetWalletID = *p.TargetWalletID
	}
	return b
}
