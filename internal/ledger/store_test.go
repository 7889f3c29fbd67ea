package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashflow/internal/blob/memory"
	"cashflow/internal/core"
	"cashflow/internal/log"
)

func openStore(t *testing.T, blobs *memory.Store) *Store {
	t.Helper()
	s, err := Open(context.Background(), blobs, log.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func seed(t *testing.T, blobs *memory.Store, key, value string) {
	t.Helper()
	if err := blobs.Set(context.Background(), key, value); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func TestOpenEmpty(t *testing.T) {
	s := openStore(t, memory.New())
	if len(s.Transactions()) != 0 || len(s.Wallets()) != 0 || len(s.BudgetItems()) != 0 {
		t.Fatal("expected empty ledger")
	}
	if s.Version() != 0 {
		t.Fatalf("Version = %d, want 0", s.Version())
	}
}

func TestOpenMalformedBlobYieldsEmpty(t *testing.T) {
	blobs := memory.New()
	seed(t, blobs, KeyTransactions, "{not json")
	seed(t, blobs, KeyWallets, `[{"id":"w1","name":"Cash","type":"cash"}]`)

	s := openStore(t, blobs)
	if got := len(s.Transactions()); got != 0 {
		t.Errorf("transactions = %d, want 0", got)
	}
	if got := len(s.Wallets()); got != 1 {
		t.Errorf("wallets = %d, want 1", got)
	}
}

func TestOpenDiscardsRetiredBudgetList(t *testing.T) {
	blobs := memory.New()
	seed(t, blobs, KeyBudgetItems, `[{"id":"budget_kost","name":"Kost","amount":1500000,"type":"expense"}]`)

	s := openStore(t, blobs)
	if got := len(s.BudgetItems()); got != 0 {
		t.Fatalf("budget items = %d, want 0", got)
	}
	raw, _, _ := blobs.Get(context.Background(), KeyBudgetItems)
	if raw != "[]" {
		t.Errorf("budget blob = %q, want []", raw)
	}
}

func TestOpenRetiredBudgetCheckRunsOnce(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	s := openStore(t, blobs)
	s.AddBudgetItem(ctx, core.BudgetItem{Name: "Bayar budget_kost Juni", Amount: 100, Type: core.BudgetExpense})
	s.AddBudgetItem(ctx, core.BudgetItem{Name: "Makan", Amount: 200, Type: core.BudgetExpense})

	if got := len(openStore(t, blobs).BudgetItems()); got != 2 {
		t.Fatalf("after reopen: budget items = %d, want 2", got)
	}
	if v, ok, _ := blobs.Get(ctx, KeyMigrationV1); !ok || v != "true" {
		t.Errorf("migration marker = %q, %v", v, ok)
	}

	// Once marked, even the retired id is left alone.
	seed(t, blobs, KeyBudgetItems, `[{"id":"budget_kost","name":"Kost","amount":1500000,"type":"expense"}]`)
	if got := len(openStore(t, blobs).BudgetItems()); got != 1 {
		t.Errorf("budget items = %d, want 1", got)
	}
}

func TestOpenSeedsLegacyWallets(t *testing.T) {
	blobs := memory.New()
	seed(t, blobs, KeyTransactions, `[
		{"id":"t1","type":"income","amount":1000,"date":"2024-01-05","description":"Gaji","wallet":"bca"},
		{"id":"t2","type":"transfer","amount":100,"date":"2024-01-06","fromWallet":"bca","toWallet":"shopeepay"}
	]`)

	s := openStore(t, blobs)
	wallets := s.Wallets()
	if len(wallets) != 2 {
		t.Fatalf("wallets = %+v, want bca and shopeepay", wallets)
	}
	if wallets[0].ID != "bca" || wallets[0].Name != "BCA" || wallets[1].Name != "SPay" {
		t.Errorf("unexpected wallets %+v", wallets)
	}
	if got := s.WalletBalance("bca"); got != 900 {
		t.Errorf("bca balance = %d, want 900", got)
	}
}

func TestOpenKeepsExistingWalletBlob(t *testing.T) {
	blobs := memory.New()
	seed(t, blobs, KeyTransactions, `[{"id":"t1","type":"income","amount":10,"date":"2024-01-05","description":"x","wallet":"bca"}]`)
	seed(t, blobs, KeyWallets, `[]`)

	s := openStore(t, blobs)
	if got := len(s.Wallets()); got != 0 {
		t.Fatalf("wallets = %d, want 0", got)
	}
	if got := s.WalletName("bca"); got != "BCA" {
		t.Errorf("WalletName(bca) = %q, want legacy label", got)
	}
}

func TestMutationsPersistAndReload(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	s := openStore(t, blobs)

	w := s.AddWallet(ctx, core.Wallet{Name: "Cash", Type: core.WalletCash})
	b := s.AddBudgetItem(ctx, core.BudgetItem{Name: "Makan", Amount: 500, Type: core.BudgetExpense, WalletID: w.ID})
	tx := s.AddTransaction(ctx, core.Transaction{
		Type: core.Income, Amount: 1000, Wallet: w.ID, Description: "Gaji", Date: core.NewDate(2025, 1, 2),
	})
	if tx.ID == "" || tx.CreatedAt.IsZero() {
		t.Fatalf("id and createdAt should be assigned: %+v", tx)
	}
	if s.Version() != 3 {
		t.Errorf("Version = %d, want 3", s.Version())
	}

	reloaded := openStore(t, blobs)
	if _, ok := reloaded.Wallet(w.ID); !ok {
		t.Error("wallet not persisted")
	}
	if _, ok := reloaded.BudgetItem(b.ID); !ok {
		t.Error("budget item not persisted")
	}
	got, ok := reloaded.Transaction(tx.ID)
	if !ok || got.Amount != 1000 || !got.Date.Equal(tx.Date.Time) {
		t.Errorf("transaction not persisted: %+v", got)
	}
}

func TestUpdateAndDeleteUnknownID(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.New())
	name := "x"

	if _, err := s.UpdateTransaction(ctx, "nope", core.TransactionPatch{Description: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTransaction err = %v", err)
	}
	if err := s.DeleteTransaction(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTransaction err = %v", err)
	}
	if _, err := s.UpdateWallet(ctx, "nope", core.WalletPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateWallet err = %v", err)
	}
	if err := s.DeleteWallet(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteWallet err = %v", err)
	}
	if _, err := s.UpdateBudgetItem(ctx, "nope", core.BudgetItemPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateBudgetItem err = %v", err)
	}
	if err := s.DeleteBudgetItem(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteBudgetItem err = %v", err)
	}
	if s.Version() != 0 {
		t.Errorf("failed mutations must not bump version, got %d", s.Version())
	}
}

func TestUpdateTransactionKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.New())
	tx := s.AddTransaction(ctx, core.Transaction{Type: core.Expense, Amount: 10, Wallet: "w", Description: "a", Date: core.NewDate(2025, 1, 1)})

	amount := core.Amount(25)
	updated, err := s.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.ID != tx.ID || !updated.CreatedAt.Equal(tx.CreatedAt) || updated.Amount != 25 || updated.Description != "a" {
		t.Errorf("unexpected update result %+v", updated)
	}
}

func TestBalanceInvertibility(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.New())
	d := core.NewDate(2025, 5, 1)
	s.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 1000, Wallet: "a", Date: d, Description: "in"})

	probes := []core.Transaction{
		{Type: core.Income, Amount: 40, Wallet: "a", Date: d, Description: "x"},
		{Type: core.Expense, Amount: 60, Wallet: "a", Date: d, Description: "x"},
		{Type: core.Transfer, Amount: 100, AdminFee: 7, FromWallet: "a", ToWallet: "b", Date: d},
		{Type: core.Transfer, Amount: 100, FromWallet: "b", ToWallet: "a", Date: d},
	}
	for _, p := range probes {
		beforeA, beforeB := s.WalletBalance("a"), s.WalletBalance("b")
		added := s.AddTransaction(ctx, p)
		if err := s.DeleteTransaction(ctx, added.ID); err != nil {
			t.Fatalf("DeleteTransaction: %v", err)
		}
		if s.WalletBalance("a") != beforeA || s.WalletBalance("b") != beforeB {
			t.Errorf("balance not restored after add/remove of %+v", p)
		}
	}
}

func TestPersistFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	s := openStore(t, blobs)
	blobs.FailWrites = errors.New("disk full")

	tx := s.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 5, Wallet: "a", Date: core.NewDate(2025, 1, 1), Description: "x"})
	if _, ok := s.Transaction(tx.ID); !ok {
		t.Fatal("in-memory state should keep the transaction")
	}
	if _, ok, _ := blobs.Get(ctx, KeyTransactions); ok {
		t.Error("blob should not have been written")
	}
}

func TestScenarioIncomeExpenseBudget(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.New())
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	today := core.DateOf(now)

	w1 := s.AddWallet(ctx, core.Wallet{ID: "W1", Name: "Main", Type: core.WalletBank})
	b1 := s.AddBudgetItem(ctx, core.BudgetItem{ID: "B1", Name: "Groceries", Amount: 500000, Type: core.BudgetExpense, WalletID: w1.ID})

	s.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 1000000, Wallet: w1.ID, Date: today, Description: "Salary"})
	if got := s.WalletBalance(w1.ID); got != 1000000 {
		t.Fatalf("balance = %d, want 1000000", got)
	}

	expense := s.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: 300000, Wallet: w1.ID, Date: today, Description: "Weekly shop",
		Category: core.CategoryBudget, BudgetItemID: b1.ID, BudgetItemName: b1.Name,
	})
	if got := s.WalletBalance(w1.ID); got != 700000 {
		t.Fatalf("balance = %d, want 700000", got)
	}

	summary := s.BudgetSummary(now)
	if len(summary) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary[0].Spent != 300000 || summary[0].Remaining != 200000 || summary[0].Percentage != 60 {
		t.Errorf("B1 summary = %+v", summary[0])
	}

	// Transfer with fee: only the fee is an expense in the monthly trend.
	w2 := s.AddWallet(ctx, core.Wallet{ID: "W2", Name: "Savings", Type: core.WalletBank})
	beforeTrend := s.MonthlyTotals(now, 6)[5].Expense
	s.AddTransaction(ctx, core.Transaction{Type: core.Transfer, Amount: 200000, AdminFee: 10000, FromWallet: w1.ID, ToWallet: w2.ID, Date: today})
	if got := s.WalletBalance(w1.ID); got != 490000 {
		t.Errorf("W1 balance = %d, want 490000", got)
	}
	if got := s.WalletBalance(w2.ID); got != 200000 {
		t.Errorf("W2 balance = %d, want 200000", got)
	}
	if got := s.MonthlyTotals(now, 6)[5].Expense - beforeTrend; got != 10000 {
		t.Errorf("trend expense delta = %d, want 10000", got)
	}

	// Deleting the budget item leaves the expense and its snapshot intact.
	if err := s.DeleteBudgetItem(ctx, b1.ID); err != nil {
		t.Fatalf("DeleteBudgetItem: %v", err)
	}
	if len(s.BudgetItems()) != 0 || len(s.BudgetSummary(now)) != 0 {
		t.Error("B1 should be gone from items and summary")
	}
	kept, ok := s.Transaction(expense.ID)
	if !ok || kept.BudgetItemName != "Groceries" || kept.BudgetItemID != "B1" {
		t.Errorf("expense snapshot lost: %+v", kept)
	}
}

func TestWalletNameFallbacks(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.New())
	w := s.AddWallet(ctx, core.Wallet{Name: "Dana", Type: core.WalletEWallet})

	if got := s.WalletName(w.ID); got != "Dana" {
		t.Errorf("WalletName = %q", got)
	}
	if err := s.DeleteWallet(ctx, w.ID); err != nil {
		t.Fatalf("DeleteWallet: %v", err)
	}
	if got := s.WalletName(w.ID); got != core.UnknownWalletName {
		t.Errorf("deleted wallet name = %q, want Unknown", got)
	}
	if got := s.WalletName("mandiri"); got != "Mandiri" {
		t.Errorf("legacy wallet name = %q", got)
	}
}

func TestFiltersAndClearAll(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.New())
	s.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 1, Wallet: "a", Date: core.NewDate(2025, 1, 3), Description: "x"})
	s.AddTransaction(ctx, core.Transaction{Type: core.Expense, Amount: 2, Wallet: "a", Date: core.NewDate(2025, 2, 3), Description: "y"})
	s.AddTransaction(ctx, core.Transaction{Type: core.Expense, Amount: 3, Wallet: "a", Date: core.NewDate(2025, 2, 9), Description: "z"})

	if got := len(s.TransactionsByType(core.Expense)); got != 2 {
		t.Errorf("expenses = %d, want 2", got)
	}
	if got := len(s.TransactionsByMonth(2025, time.February)); got != 2 {
		t.Errorf("february = %d, want 2", got)
	}
	if got := s.CategoryBreakdown()[core.CategoryLainnya]; got != 5 {
		t.Errorf("uncategorized expenses = %d, want 5", got)
	}
	if got := s.Overview(); got.Income != 1 || got.Expense != 5 || got.Balance != -4 {
		t.Errorf("overview = %+v", got)
	}

	s.ClearAll(ctx)
	if len(s.Transactions()) != 0 {
		t.Error("ClearAll left transactions")
	}
}

func TestWalletBalancesInRegistryOrder(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.New())
	a := s.AddWallet(ctx, core.Wallet{Name: "A", Type: core.WalletCash})
	b := s.AddWallet(ctx, core.Wallet{Name: "B", Type: core.WalletCash})
	s.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 9, Wallet: b.ID, Date: core.NewDate(2025, 1, 1), Description: "x"})

	got := s.WalletBalances()
	if len(got) != 2 || got[0].ID != a.ID || got[0].Balance != 0 || got[1].Balance != 9 {
		t.Errorf("WalletBalances = %+v", got)
	}
}
