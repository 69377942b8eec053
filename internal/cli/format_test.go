package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatGrams(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"92.1375", "92.14g"},
		{"91", "91.00g"},
		{"1.1375", "1.14g"},
		{"0", "0.00g"},
		{"283.5", "283.50g"},
	}
	for _, tt := range tests {
		got := FormatGrams(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Errorf("FormatGrams(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatOunces(t *testing.T) {
	if got := FormatOunces(decimal.RequireFromString("3.25")); got != "3.25 oz" {
		t.Errorf("got %q", got)
	}
	if got := FormatOunces(decimal.RequireFromString("10.0")); got != "10 oz" {
		t.Errorf("got %q", got)
	}
}

func TestFormatUnits(t *testing.T) {
	tests := map[int64]string{0: "0 eighths", 1: "1 eighth", 6: "6 eighths", 2500: "2,500 eighths"}
	for n, want := range tests {
		if got := FormatUnits(n); got != want {
			t.Errorf("FormatUnits(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDateRange(t *testing.T) {
	from := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)
	if got := FormatDateRange(from, to); got != "Mar 29 - Apr 04" {
		t.Errorf("got %q", got)
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays(1); got != "1 day" {
		t.Errorf("got %q", got)
	}
	if got := FormatDays(12); got != "12 days" {
		t.Errorf("got %q", got)
	}
}
