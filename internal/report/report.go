// Package report derives monthly and per-category aggregates from the
// transaction log. Every call rescans the full log.
package report

import (
	"time"

	"cashflow/internal/budget"
	"cashflow/internal/core"
)

// DefaultMonths is the length of the trailing trend series.
const DefaultMonths = 6

// MonthTotal is one bucket of the trailing income/expense series.
type MonthTotal struct {
	Year    int         `json:"year"`
	Month   time.Month  `json:"month"`
	Label   string      `json:"label"`
	Income  core.Amount `json:"income"`
	Expense core.Amount `json:"expense"`
}

// Totals is the all-time overview shown above the transaction list.
type Totals struct {
	Income  core.Amount `json:"income"`
	Expense core.Amount `json:"expense"`
	Balance core.Amount `json:"balance"`
}

// MonthlyTotals returns exactly monthCount buckets, oldest first, for the
// consecutive calendar months ending at now's month.
//
// Expense counts expense amounts plus transfer admin fees; a transfer's
// principal only moves money between wallets and is not counted.
func MonthlyTotals(txs []core.Transaction, now time.Time, monthCount int) []MonthTotal {
	if monthCount <= 0 {
		return []MonthTotal{}
	}
	out := make([]MonthTotal, 0, monthCount)
	for i := monthCount - 1; i >= 0; i-- {
		// Day 1 so that AddDate never overflows into the following month.
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		bucket := MonthTotal{
			Year:  first.Year(),
			Month: first.Month(),
			Label: core.ShortMonthName(first.Month()),
		}
		for _, tx := range budget.InMonth(txs, first.Year(), first.Month()) {
			bucket.Income += incomeOf(tx)
			bucket.Expense += expenseOf(tx)
		}
		out = append(out, bucket)
	}
	return out
}

// CategoryBreakdown sums expense amounts by category over the whole log.
// Missing or unrecognized categories are grouped under core.CategoryFallback.
func CategoryBreakdown(txs []core.Transaction) map[core.Category]core.Amount {
	out := make(map[core.Category]core.Amount)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		cat := tx.Category
		if !cat.IsKnown() {
			cat = core.CategoryFallback
		}
		out[cat] += tx.Amount
	}
	return out
}

// Overview sums income and losses over the whole log.
func Overview(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		t.Income += incomeOf(tx)
		t.Expense += expenseOf(tx)
	}
	t.Balance = t.Income - t.Expense
	return t
}

func incomeOf(tx core.Transaction) core.Amount {
	if tx.Type == core.Income {
		return tx.Amount
	}
	return 0
}

func expenseOf(tx core.Transaction) core.Amount {
	switch tx.Type {
	case core.Expense:
		return tx.Amount
	case core.Transfer:
		return tx.AdminFee
	}
	return 0
}
