// Package core provides money parsing and handling utilities.
//
// Amounts are whole units of the display currency (rupiah); there are no
// fractional subunits anywhere in the ledger.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a non-negative count of whole currency units.
type Amount int64

var idPrinter = message.NewPrinter(language.Indonesian)

// UnmarshalJSON accepts integers, fractional numbers (rounded, as older
// clients stored parseFloat results) and numeric strings. Anything else
// decodes to zero instead of failing the surrounding record, as do numbers
// outside the int64 range.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = 0
		// float64(math.MaxInt64) is 2^63, the first value that does not fit.
		if r := math.Round(f); math.Abs(r) < math.MaxInt64 {
			*a = Amount(r)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := ParseAmount(s); err == nil {
			*a = v
			return nil
		}
	}
	*a = 0
	return nil
}

// ParseAmount converts user input to an Amount.
//
// It accepts plain digits ("150000"), Indonesian or English thousands
// grouping ("150.000", "150,000"), an optional "Rp" prefix, and a one or two
// digit decimal tail which is rounded half-up ("12,5" -> 13).
// Negative, zero and malformed inputs return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("1.000.000") -> 1000000, nil
//	ParseAmount("Rp 25.000") -> 25000, nil
//	ParseAmount("99,50")     -> 100, nil
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(s[2:])
	}
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return 0, ErrInvalidAmount
		}
	}

	intPart, fracPart, ok := splitAmount(s)
	if !ok {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if fracPart != "" && fracPart[0] >= '5' {
		iv++
	}
	if iv <= 0 {
		return 0, ErrInvalidAmount
	}
	return Amount(iv), nil
}

// splitAmount separates grouping separators from a trailing decimal part.
// A final separator followed by exactly three digits is grouping; followed by
// at most two digits it starts the decimal part.
func splitAmount(s string) (intPart, fracPart string, ok bool) {
	sep := strings.LastIndexAny(s, ".,")
	if sep < 0 {
		return s, "", true
	}
	head, tail := s[:sep], s[sep+1:]
	if len(tail) == 3 {
		if !grouped(s) {
			return "", "", false
		}
		return stripSeparators(s), "", true
	}
	if len(tail) > 2 {
		return "", "", false
	}
	if strings.ContainsAny(head, ".,") && !grouped(head) {
		return "", "", false
	}
	return stripSeparators(head), tail, true
}

// grouped reports whether s is digits in thousands groups: "1.234.567".
func grouped(s string) bool {
	groups := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == ',' })
	if len(groups) != strings.Count(s, ".")+strings.Count(s, ",")+1 {
		return false
	}
	for i, g := range groups {
		if i == 0 && (len(g) == 0 || len(g) > 3) {
			return false
		}
		if i > 0 && len(g) != 3 {
			return false
		}
	}
	return true
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

// FormatRupiah renders an amount the way the Indonesian locale shows currency, e.g. "Rp 1.500.000".
func FormatRupiah(a Amount) string {
	if a < 0 {
		return "-Rp " + idPrinter.Sprintf("%d", int64(-a))
	}
	return "Rp " + idPrinter.Sprintf("%d", int64(a))
}
