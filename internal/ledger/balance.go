package ledger

import "cashflow/internal/core"

// BalanceOf derives a wallet's balance from the full transaction log.
//
// Income and incoming transfers credit the wallet. Expenses debit it, and an
// outgoing transfer debits its amount plus the admin fee; the destination
// receives the amount only. There is no floor, so balances can go negative.
func BalanceOf(walletID string, txs []core.Transaction) core.Amount {
	var balance core.Amount
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			if tx.Wallet == walletID {
				balance += tx.Amount
			}
		case core.Expense:
			if tx.Wallet == walletID {
				balance -= tx.Amount
			}
		case core.Transfer:
			if tx.FromWallet == walletID {
				balance -= tx.Amount + tx.AdminFee
			}
			if tx.ToWallet == walletID {
				balance += tx.Amount
			}
		}
	}
	return balance
}
