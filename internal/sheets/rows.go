package sheets

import (
	"time"

	"cashflow/internal/budget"
	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

var (
	transactionHeader = []any{"ID", "Date", "Type", "Description", "Amount", "Admin Fee", "Wallet", "From", "To", "Category", "Budget Item"}
	walletHeader      = []any{"ID", "Name", "Type", "Balance", "Balance (Rp)"}
	budgetHeader      = []any{"ID", "Name", "Type", "Amount", "Spent", "Remaining", "Percentage", "Wallet", "Target Wallet"}
)

// TransactionRows lays out the log, one row per transaction in log order.
// walletName resolves ids for display.
func TransactionRows(txs []core.Transaction, walletName func(string) string) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, transactionHeader)
	for _, tx := range txs {
		row := []any{
			tx.ID,
			tx.Date.String(),
			string(tx.Type),
			tx.Description,
			int64(tx.Amount),
			int64(tx.AdminFee),
			nameOrBlank(tx.Wallet, walletName),
			nameOrBlank(tx.FromWallet, walletName),
			nameOrBlank(tx.ToWallet, walletName),
			"",
			tx.BudgetItemName,
		}
		if tx.Type == core.Expense {
			cat := tx.Category
			if cat == "" {
				cat = core.CategoryFallback
			}
			row[9] = cat.Label()
		}
		rows = append(rows, row)
	}
	return rows
}

func WalletRows(wallets []ledger.WalletWithBalance) [][]any {
	rows := make([][]any, 0, len(wallets)+1)
	rows = append(rows, walletHeader)
	for _, w := range wallets {
		rows = append(rows, []any{w.ID, w.Name, string(w.Type), int64(w.Balance), core.FormatRupiah(w.Balance)})
	}
	return rows
}

// BudgetRows lays out one month's budget consumption. Percentage is rounded
// to one decimal.
func BudgetRows(summary []budget.Summary, walletName func(string) string) [][]any {
	rows := make([][]any, 0, len(summary)+1)
	rows = append(rows, budgetHeader)
	for _, s := range summary {
		rows = append(rows, []any{
			s.ID,
			s.Name,
			string(s.Type),
			int64(s.Amount),
			int64(s.Spent),
			int64(s.Remaining),
			float64(int64(s.Percentage*10+0.5)) / 10,
			nameOrBlank(s.WalletID, walletName),
			nameOrBlank(s.TargetWalletID, walletName),
		})
	}
	return rows
}

func nameOrBlank(id string, walletName func(string) string) string {
	if id == "" {
		return ""
	}
	return walletName(id)
}

// Workbook builds the three exported sheets from a store snapshot.
func Workbook(store *ledger.Store, now time.Time) []Sheet {
	return []Sheet{
		{Name: TransactionsSheet, Rows: TransactionRows(store.Transactions(), store.WalletName)},
		{Name: WalletsSheet, Rows: WalletRows(store.WalletBalances())},
		{Name: BudgetSheet, Rows: BudgetRows(store.BudgetSummary(now), store.WalletName)},
	}
}
