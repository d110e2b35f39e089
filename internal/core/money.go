// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts entered by the
// user and rendering them back in the two-decimal dollar form used across
// the budget screens.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal with two places.
//
// It accepts an optional sign, an optional leading "$", a dot decimal
// separator and comma thousands separators grouping exactly three digits.
// A single comma followed by one or two digits, with no dot, is read as a
// decimal separator (12,34). Any other comma is rejected. Amounts are
// rounded half-up on the third decimal place. Signed values are allowed;
// zero is returned as zero and left to the caller to reject.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("$12,34")    -> 12.34
//	ParseAmount("1,234.50")  -> 1234.50
//	ParseAmount("1,234")     -> 1234
//	ParseAmount("-12.345")   -> -12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		negative = s[0] == '-'
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s, ok := normalizeSeparators(s)
	if !ok {
		return decimal.Zero, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	intPart, fracPart := parts[0], ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart != "" {
		intPart += "." + fracPart
	}

	d, err := decimal.NewFromString(intPart)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites s to use only a dot decimal separator.
func normalizeSeparators(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	if i := strings.Index(s, ","); strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if n := len(s) - i - 1; n == 1 || n == 2 {
			return s[:i] + "." + s[i+1:], true
		}
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	groups := strings.Split(intPart, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	out := strings.Join(groups, "")
	if hasFrac {
		out += "." + frac
	}
	return out, true
}

// MustParseAmount is ParseAmount for literals in tests and seeds.
func MustParseAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatAmount renders "$12.34" or "-$12.34".
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatCardBalance renders a credit card balance with an explicit sign, so
// debt reads "-$120.00" and a credit reads "+$5.00".
func FormatCardBalance(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}
