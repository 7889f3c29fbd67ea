package sheets

import (
	"context"
	"testing"
	"time"

	"cashflow/internal/blob/memory"
	"cashflow/internal/budget"
	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
)

func names(id string) string {
	return map[string]string{"w1": "BCA", "w2": "Dana"}[id]
}

func TestTransactionRows(t *testing.T) {
	d := core.NewDate(2025, 4, 3)
	rows := TransactionRows([]core.Transaction{
		{ID: "a", Type: core.Expense, Amount: 1500, Wallet: "w1", Date: d, Description: "Makan", Category: core.CategoryHarian},
		{ID: "b", Type: core.Transfer, Amount: 100, AdminFee: 5, FromWallet: "w1", ToWallet: "w2", Date: d, Description: "Top up"},
		{ID: "c", Type: core.Expense, Amount: 10, Wallet: "w2", Description: "Bad date"},
	}, names)

	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if rows[1][1] != "2025-04-03" || rows[1][4] != int64(1500) || rows[1][6] != "BCA" || rows[1][9] != "Harian" {
		t.Errorf("expense row = %v", rows[1])
	}
	if rows[2][5] != int64(5) || rows[2][7] != "BCA" || rows[2][8] != "Dana" || rows[2][9] != "" {
		t.Errorf("transfer row = %v", rows[2])
	}
	if rows[3][1] != "" || rows[3][9] != "Lainnya" {
		t.Errorf("zero date row = %v", rows[3])
	}
}

func TestBudgetRowsRoundsPercentage(t *testing.T) {
	rows := BudgetRows([]budget.Summary{{
		BudgetItem: core.BudgetItem{ID: "b1", Name: "Listrik", Amount: 300, Type: core.BudgetExpense, WalletID: "w1"},
		Spent:      100,
		Remaining:  200,
		Percentage: 100.0 / 3,
	}}, names)

	if got := rows[1][6]; got != 33.3 {
		t.Errorf("percentage = %v, want 33.3", got)
	}
	if rows[1][7] != "BCA" || rows[1][8] != "" {
		t.Errorf("wallet columns = %v", rows[1][7:])
	}
}

func TestWorkbook(t *testing.T) {
	ctx := context.Background()
	store, err := ledger.Open(ctx, memory.New(), log.Nop())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	w := store.AddWallet(ctx, core.Wallet{Name: "Cash", Type: core.WalletCash})
	store.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 2000, Wallet: w.ID, Date: core.NewDate(2025, 4, 1), Description: "Gaji"})

	wb := Workbook(store, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	if len(wb) != 3 || wb[0].Name != TransactionsSheet || wb[1].Name != WalletsSheet || wb[2].Name != BudgetSheet {
		t.Fatalf("workbook = %+v", wb)
	}
	if got := wb[1].Rows[1]; got[3] != int64(2000) || got[4] != "Rp 2.000" {
		t.Errorf("wallet row = %v", got)
	}
	if len(wb[2].Rows) != 1 {
		t.Errorf("budget sheet should hold only the header, got %d rows", len(wb[2].Rows))
	}
}
