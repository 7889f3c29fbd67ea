package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/wallets/w1").
		Data(map[string]string{"id": "w1"}).
		Write(w)

	if w.Code != http.StatusCreated || w.Header().Get("Location") != "/api/wallets/w1" {
		t.Fatalf("code=%d headers=%v", w.Code, w.Header())
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type = %q", w.Header().Get("Content-Type"))
	}
	if strings.TrimSpace(w.Body.String()) != `{"id":"w1"}` {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestNoContentHasNoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{fmt.Errorf("wallet x: %w", ledger.ErrNotFound), http.StatusNotFound, "not_found"},
		{core.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{fmt.Errorf("wallet ghost: %w", core.ErrUnknownWallet), http.StatusBadRequest, "unknown_wallet"},
		{fmt.Errorf("%w: at most Rp 5.000", core.ErrExceedsBudget), http.StatusBadRequest, "exceeds_budget"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range tests {
		w := httptest.NewRecorder()
		ErrorFor(tc.err).Write(w)
		if w.Code != tc.wantCode || !strings.Contains(w.Body.String(), tc.wantBody) {
			t.Errorf("%v: code=%d body=%s", tc.err, w.Code, w.Body.String())
		}
	}
}
