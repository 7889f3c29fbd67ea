package core

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	walletIDPrefix = "wallet_"
	budgetIDPrefix = "budget_"
)

func newULID() string {
	return strings.ToLower(ulid.Make().String())
}

// NewTransactionID returns a fresh, time-ordered transaction id.
func NewTransactionID() string {
	return newULID()
}

func NewWalletID() string {
	return walletIDPrefix + newULID()
}

func NewBudgetItemID() string {
	return budgetIDPrefix + newULID()
}
