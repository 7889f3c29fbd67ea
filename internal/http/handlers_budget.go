package http

import (
	"net/http"
	"strconv"

	"cashflow/internal/budget"
	"cashflow/internal/core"
	"cashflow/internal/services"
)

type useBudgetRequest struct {
	Amount core.Amount `json:"amount"`
}

func (s *Server) handleListBudgetItems(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.store.BudgetItems()).Write(w)
}

func (s *Server) handleCreateBudgetItem(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in.Name = sanitizeInput(in.Name)

	item, err := s.svc.CreateBudgetItem(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(item).Write(w)
}

func (s *Server) handleUpdateBudgetItem(w http.ResponseWriter, r *http.Request) {
	var patch core.BudgetItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	sanitizePtr(patch.Name)

	item, err := s.svc.UpdateBudgetItem(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(item).Write(w)
}

func (s *Server) handleDeleteBudgetItem(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBudgetItem(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleUseBudget spends from an item's remaining allocation this month.
func (s *Server) handleUseBudget(w http.ResponseWriter, r *http.Request) {
	var req useBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tx, err := s.svc.UseBudget(r.Context(), r.PathValue("id"), req.Amount)
	s.writeCreated(w, r, tx, err)
}

// budgetSummaryView adds the over-budget flag the clients render.
type budgetSummaryView struct {
	budget.Summary
	OverBudget bool `json:"overBudget"`
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	month := strconv.Itoa(now.Year()) + "-" + strconv.Itoa(int(now.Month()))
	views := cached(s, "budget-summary", func() []budgetSummaryView {
		summaries := s.store.BudgetSummary(now)
		out := make([]budgetSummaryView, 0, len(summaries))
		for _, sum := range summaries {
			out = append(out, budgetSummaryView{Summary: sum, OverBudget: sum.OverBudget()})
		}
		return out
	}, month)
	NewJSONResponse().Data(views).Write(w)
}
