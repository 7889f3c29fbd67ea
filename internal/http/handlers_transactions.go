package http

import (
	"fmt"
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/services"
)

// createTransactionRequest is the body of POST /api/transactions; Type picks
// which of the typed operations handles it.
type createTransactionRequest struct {
	Type         core.TransactionType `json:"type"`
	Amount       core.Amount          `json:"amount"`
	Description  string               `json:"description"`
	Date         core.Date            `json:"date"`
	Wallet       string               `json:"wallet,omitempty"`
	Category     core.Category        `json:"category,omitempty"`
	BudgetItemID string               `json:"budgetItemId,omitempty"`
	FromWallet   string               `json:"fromWallet,omitempty"`
	ToWallet     string               `json:"toWallet,omitempty"`
	AdminFee     core.Amount          `json:"adminFee,omitempty"`
}

// transactionView decorates a transaction with display names.
type transactionView struct {
	core.Transaction
	WalletName     string `json:"walletName,omitempty"`
	FromWalletName string `json:"fromWalletName,omitempty"`
	ToWalletName   string `json:"toWalletName,omitempty"`
	CategoryLabel  string `json:"categoryLabel,omitempty"`
}

func (s *Server) viewOf(tx core.Transaction) transactionView {
	v := transactionView{Transaction: tx}
	switch tx.Type {
	case core.Transfer:
		v.FromWalletName = s.store.WalletName(tx.FromWallet)
		v.ToWalletName = s.store.WalletName(tx.ToWallet)
	default:
		v.WalletName = s.store.WalletName(tx.Wallet)
	}
	if tx.Type == core.Expense {
		v.CategoryLabel = tx.Category.Label()
	}
	return v
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	txType, byType, err := ParseTransactionType(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	month, byMonth, err := ParseMonthParams(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var txs []core.Transaction
	switch {
	case byMonth:
		txs = s.store.TransactionsByMonth(month.Year, month.Month)
	case byType:
		txs = s.store.TransactionsByType(txType)
	default:
		txs = s.store.Transactions()
	}

	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		if byMonth && byType && tx.Type != txType {
			continue
		}
		views = append(views, s.viewOf(tx))
	}
	NewJSONResponse().Data(views).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, ok := s.store.Transaction(id)
	if !ok {
		writeError(w, r, fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound))
		return
	}
	NewJSONResponse().Data(s.viewOf(tx)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	req.Description = sanitizeInput(req.Description)

	var (
		tx  core.Transaction
		err error
	)
	switch req.Type {
	case core.Income:
		tx, err = s.svc.RecordIncome(r.Context(), services.IncomeInput{
			Amount: req.Amount, Description: req.Description, Wallet: req.Wallet, Date: req.Date,
		})
	case core.Expense:
		tx, err = s.svc.RecordExpense(r.Context(), services.ExpenseInput{
			Amount: req.Amount, Description: req.Description, Wallet: req.Wallet, Date: req.Date,
			Category: req.Category, BudgetItemID: req.BudgetItemID,
		})
	case core.Transfer:
		tx, err = s.svc.RecordTransfer(r.Context(), services.TransferInput{
			Amount: req.Amount, AdminFee: req.AdminFee, FromWallet: req.FromWallet, ToWallet: req.ToWallet,
			Date: req.Date, Description: req.Description,
		})
	default:
		err = core.ErrInvalidType
	}
	s.writeCreated(w, r, tx, err)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in services.IncomeInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in.Description = sanitizeInput(in.Description)
	tx, err := s.svc.RecordIncome(r.Context(), in)
	s.writeCreated(w, r, tx, err)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in.Description = sanitizeInput(in.Description)
	tx, err := s.svc.RecordExpense(r.Context(), in)
	s.writeCreated(w, r, tx, err)
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var in services.TransferInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in.Description = sanitizeInput(in.Description)
	tx, err := s.svc.RecordTransfer(r.Context(), in)
	s.writeCreated(w, r, tx, err)
}

func (s *Server) writeCreated(w http.ResponseWriter, r *http.Request, tx core.Transaction, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.recordTransaction()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Data(s.viewOf(tx)).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch core.TransactionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	sanitizePtr(patch.Description)

	tx, err := s.svc.UpdateTransaction(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.viewOf(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
