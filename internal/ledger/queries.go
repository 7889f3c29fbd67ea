package ledger

import (
	"time"

	"cashflow/internal/budget"
	"cashflow/internal/core"
	"cashflow/internal/report"
)

// WalletBalance derives the balance of one wallet from the log.
func (s *Store) WalletBalance(id string) core.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BalanceOf(id, s.txs)
}

// WalletWithBalance pairs a registered wallet with its derived balance.
type WalletWithBalance struct {
	core.Wallet
	Balance core.Amount `json:"balance"`
}

// WalletBalances returns every registered wallet with its balance, in
// registry order.
func (s *Store) WalletBalances() []WalletWithBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WalletWithBalance, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, WalletWithBalance{Wallet: w, Balance: BalanceOf(w.ID, s.txs)})
	}
	return out
}

// WalletName resolves a wallet id for display. Deleted wallets fall back to
// the legacy label when the id is one of the fixed pre-registry wallets,
// otherwise to core.UnknownWalletName.
func (s *Store) WalletName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.walletIndex(id); i >= 0 {
		return s.wallets[i].Name
	}
	if label, ok := core.LegacyWalletLabel(id); ok {
		return label
	}
	return core.UnknownWalletName
}

// BudgetSummary reports consumption of every budget item for now's month.
func (s *Store) BudgetSummary(now time.Time) []budget.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return budget.Summarize(s.items, s.txs, now)
}

func (s *Store) MonthlyTotals(now time.Time, months int) []report.MonthTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.MonthlyTotals(s.txs, now, months)
}

func (s *Store) CategoryBreakdown() map[core.Category]core.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.CategoryBreakdown(s.txs)
}

func (s *Store) Overview() report.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.Overview(s.txs)
}

// TransactionsByType filters the log by type, preserving order.
func (s *Store) TransactionsByType(t core.TransactionType) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

func (s *Store) TransactionsByMonth(year int, month time.Month) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return budget.InMonth(s.txs, year, month)
}
