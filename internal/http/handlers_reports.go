package http

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"

	"cashflow/internal/core"
	"cashflow/internal/report"
)

type categoryTotal struct {
	Category core.Category `json:"category"`
	Label    string        `json:"label"`
	Amount   core.Amount   `json:"amount"`
}

// handleMonthlyReport returns the trailing income/expense series ending this month.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	months, err := ParseMonths(r.URL.Query(), s.trendMonths)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	now := s.now()
	month := strconv.Itoa(now.Year()) + "-" + strconv.Itoa(int(now.Month()))
	totals := cached(s, "monthly", func() []report.MonthTotal {
		return s.store.MonthlyTotals(now, months)
	}, month, strconv.Itoa(months))
	NewJSONResponse().Data(totals).Write(w)
}

// handleCategoryReport lists expense totals per category, largest first.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	totals := cached(s, "categories", func() []categoryTotal {
		breakdown := s.store.CategoryBreakdown()
		out := make([]categoryTotal, 0, len(breakdown))
		for c, amount := range breakdown {
			out = append(out, categoryTotal{Category: c, Label: c.Label(), Amount: amount})
		}
		slices.SortFunc(out, func(a, b categoryTotal) int {
			if n := cmp.Compare(b.Amount, a.Amount); n != 0 {
				return n
			}
			return cmp.Compare(a.Category, b.Category)
		})
		return out
	})
	NewJSONResponse().Data(totals).Write(w)
}

func (s *Server) handleOverviewReport(w http.ResponseWriter, r *http.Request) {
	totals := cached(s, "overview", s.store.Overview)
	NewJSONResponse().Data(totals).Write(w)
}
