// Package http serves the ledger as a JSON API.
//
// This file implements utilities for decoding request bodies and query
// parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cashflow/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// decodeJSON reads a single JSON object from the request body into v.
// Unknown fields are rejected so typos do not silently become no-ops.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// ParseMonthParams reads an optional ?year=&month= pair. ok is false when
// neither is present; a half-specified or out of range pair is an error.
func ParseMonthParams(query url.Values) (params MonthParams, ok bool, err error) {
	y := strings.TrimSpace(query.Get("year"))
	m := strings.TrimSpace(query.Get("month"))
	if y == "" && m == "" {
		return MonthParams{}, false, nil
	}
	if y == "" || m == "" {
		return MonthParams{}, false, errors.New("year and month must be given together")
	}

	year, err := strconv.Atoi(y)
	if err != nil || year < 1 {
		return MonthParams{}, false, fmt.Errorf("invalid year %q", y)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return MonthParams{}, false, fmt.Errorf("invalid month %q", m)
	}
	return MonthParams{Year: year, Month: time.Month(month)}, true, nil
}

// ParseTransactionType reads an optional ?type= filter.
func ParseTransactionType(query url.Values) (core.TransactionType, bool, error) {
	v := strings.ToLower(strings.TrimSpace(query.Get("type")))
	if v == "" {
		return "", false, nil
	}
	t := core.TransactionType(v)
	if !t.IsValid() {
		return "", false, fmt.Errorf("invalid type %q", v)
	}
	return t, true, nil
}

// ParseMonths reads ?months= bounded to [1, 60], falling back to def.
func ParseMonths(query url.Values, def int) (int, error) {
	v := strings.TrimSpace(query.Get("months"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 60 {
		return 0, fmt.Errorf("invalid months %q", v)
	}
	return n, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizePtr(s *string) {
	if s != nil {
		*s = sanitizeInput(*s)
	}
}
