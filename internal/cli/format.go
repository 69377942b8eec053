// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"

	"github.com/shopspring/decimal"
)

// FormatGrams formats a gram quantity rounded to two places.
// e.g., 92.1375 -> "92.14g", 91 -> "91.00g"
func FormatGrams(g decimal.Decimal) string {
	return g.StringFixed(2) + "g"
}

// FormatOunces formats an ounce-equivalent allotment without trailing zeros.
// e.g., 3.25 -> "3.25 oz", 10 -> "10 oz"
func FormatOunces(oz decimal.Decimal) string {
	return oz.String() + " oz"
}

// FormatUnits formats a count of eighths with the right plural.
func FormatUnits(n int64) string {
	if n == 1 {
		return "1 eighth"
	}
	return FormatNumber(n) + " eighths"
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return planner.FormatDate(t)
}

// FormatShortDate renders a date as "Mar 01".
func FormatShortDate(t time.Time) string {
	return t.Format("Jan 02")
}

// FormatDateRange renders an inclusive date range.
// e.g., "Mar 01 - Mar 07"
func FormatDateRange(from, to time.Time) string {
	return FormatShortDate(from) + " - " + FormatShortDate(to)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	head := len(s) % 3
	if head > 0 {
		result.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDays formats a day count with the right plural.
func FormatDays(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return fmt.Sprintf("%d days", n)
}
