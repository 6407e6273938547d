// Package utils provides shared formatting helpers.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatDecimalPercent formats a decimal percentage to two places,
// optionally prefixing positive values with "+".
func FormatDecimalPercent(d decimal.Decimal, signed bool) string {
	s := d.StringFixed(2) + "%"
	if signed && d.IsPositive() {
		return "+" + s
	}
	return s
}

// FormatAmount formats an amount with thousands separators and two places.
func FormatAmount(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	str := amount.Abs().StringFixed(2)
	parts := strings.SplitN(str, ".", 2)

	result := groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatScore formats a 0-100 score as a whole percentage.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.0f%%", score)
}

// FormatRatio formats a ratio such as Sharpe or beta.
func FormatRatio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
