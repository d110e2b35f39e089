package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"12,5", "12.5", true},
		{"1,234", "1234", true},
		{"$1,234.56", "1234.56", true},
		{"-12,345,678", "-12345678", true},
		{"1,234,5", "", false},
		{"1,23,456", "", false},
		{"1234,567", "", false},
		{"1,", "", false},
		{",123", "", false},
		{"1,234,56", "", false},
		{"1.234,56", "", false},
		{"$12.50", "12.5", true},
		{"0.01", "0.01", true},
		{".5", "0.5", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-30", "-30", true},
		{"-$4.20", "-4.2", true},
		{"+7", "7", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"$", "", false},
		{".", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		card string
	}{
		{"60", "$60.00", "+$60.00"},
		{"-30.5", "-$30.50", "-$30.50"},
		{"0", "$0.00", "+$0.00"},
	}
	for _, tc := range cases {
		d := decimal.RequireFromString(tc.in)
		if got := FormatAmount(d); got != tc.want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", tc.in, got, tc.want)
		}
		if got := FormatCardBalance(d); got != tc.card {
			t.Fatalf("FormatCardBalance(%s) = %q, want %q", tc.in, got, tc.card)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("03/15/2027")
	if err != nil || !got.Equal(NewDate(2027, 3, 15)) {
		t.Fatalf("unexpected %v (err=%v)", got, err)
	}
	got, err = ParseDueDate("2027-03-15")
	if err != nil || !got.Equal(NewDate(2027, 3, 15)) {
		t.Fatalf("unexpected %v (err=%v)", got, err)
	}
	if _, err := ParseDueDate("13/40/2027"); err == nil {
		t.Fatalf("expected error for impossible date")
	}
}
