// Package budget attributes transactions to budget items and reports how much
// of each item's monthly allocation has been consumed.
package budget

import (
	"strings"
	"time"

	"cashflow/internal/core"
)

// Summary is a budget item together with its consumption for one month.
type Summary struct {
	core.BudgetItem
	Spent      core.Amount `json:"spent"`
	Remaining  core.Amount `json:"remaining"`  // negative when over budget
	Percentage float64     `json:"percentage"` // 0 when the allocation is 0
}

// OverBudget reports whether spending exceeded a non-zero allocation.
func (s Summary) OverBudget() bool {
	return s.Amount > 0 && s.Spent > s.Amount
}

// Summarize computes consumption for every item over the calendar month of now.
//
// Expenses count toward an item only through an exact budgetItemId link.
// Transfers carry no link and are matched by MatchesTransferDescription.
// The result has one entry per item, in input order.
func Summarize(items []core.BudgetItem, txs []core.Transaction, now time.Time) []Summary {
	month := InMonth(txs, now.Year(), now.Month())

	out := make([]Summary, 0, len(items))
	for _, item := range items {
		var spent core.Amount
		for _, tx := range month {
			switch tx.Type {
			case core.Expense:
				if tx.BudgetItemID != "" && tx.BudgetItemID == item.ID {
					spent += tx.Amount
				}
			case core.Transfer:
				if MatchesTransferDescription(item.Name, tx.Description) {
					spent += tx.Amount
				}
			}
		}
		out = append(out, Summary{
			BudgetItem: item,
			Spent:      spent,
			Remaining:  item.Amount - spent,
			Percentage: percentage(spent, item.Amount),
		})
	}
	return out
}

// MatchesTransferDescription is the loose heuristic that attributes a transfer
// to a budget item: the transfer description contains the item name
// (case-sensitive substring). A budget named "Rent" also matches
// "Rent payment to landlord 2", and items whose names contain one another
// both claim the same transfer. An empty name matches nothing.
func MatchesTransferDescription(itemName, description string) bool {
	if itemName == "" {
		return false
	}
	return strings.Contains(description, itemName)
}

// InMonth returns the transactions dated in the given year and month.
// Transactions without a valid date are skipped.
func InMonth(txs []core.Transaction, year int, month time.Month) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Date.InMonth(year, month) {
			out = append(out, tx)
		}
	}
	return out
}

func percentage(spent, amount core.Amount) float64 {
	if amount <= 0 {
		return 0
	}
	return float64(spent) * 100 / float64(amount)
}
