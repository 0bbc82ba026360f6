// Package currency renders amounts for display: fixed "Rp. " prefix, comma
// thousands separators, no decimal places. Pure and stateless; no locale
// negotiation.
package currency

import (
	"math"
	"strconv"
	"strings"
)

// Format rounds amount to the nearest whole rupiah and groups the digits.
//
//	Format(1234567) == "Rp. 1,234,567"
//	Format(-2500)   == "Rp. -2,500"
func Format(amount float64) string {
	n := int64(math.Round(math.Abs(amount)))
	grouped := group(strconv.FormatInt(n, 10))
	if amount < 0 && n != 0 {
		return "Rp. -" + grouped
	}
	return "Rp. " + grouped
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
