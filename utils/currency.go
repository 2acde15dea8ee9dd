package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupee formats an amount for display, e.g. 1325.5 -> "₹1,325.50".
// Rounding happens here and nowhere else.
func FormatRupee(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	parts := strings.SplitN(amount.StringFixed(2), ".", 2)
	integerPart, decimalPart := parts[0], parts[1]

	// Tambahkan pemisah ribuan
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + "₹" + strings.Join(groups, ",") + "." + decimalPart
}
