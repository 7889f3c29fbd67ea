// Package sheets mirrors the ledger into a spreadsheet. Row layouts are built
// here from ledger snapshots; adapters only move the resulting grids.
package sheets

import "context"

// Sheet names of the exported workbook.
const (
	TransactionsSheet = "Transactions"
	WalletsSheet      = "Wallets"
	BudgetSheet       = "Budget"
)

// Sheet is one named grid of cell values, header row first.
type Sheet struct {
	Name string
	Rows [][]any
}

// Ports for outbound adapters.
type (
	// LedgerExporter replaces the content of every given sheet.
	LedgerExporter interface {
		Export(ctx context.Context, sheets []Sheet) error
	}
)
