package http

import (
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/services"
)

// handleListWallets returns every wallet with its derived balance.
func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets := cached(s, "wallets", func() []ledger.WalletWithBalance {
		return s.store.WalletBalances()
	})
	NewJSONResponse().Data(wallets).Write(w)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var in services.WalletInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in.Name = sanitizeInput(in.Name)

	wallet, err := s.svc.CreateWallet(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Data(ledger.WalletWithBalance{Wallet: wallet, Balance: s.store.WalletBalance(wallet.ID)}).
		Write(w)
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var patch core.WalletPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	sanitizePtr(patch.Name)

	wallet, err := s.svc.UpdateWallet(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Data(ledger.WalletWithBalance{Wallet: wallet, Balance: s.store.WalletBalance(wallet.ID)}).
		Write(w)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteWallet(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
