package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// CurrencySymbol prefixes formatted amounts.
var CurrencySymbol = "Rs."

// FormatAmount renders a whole-unit amount with thousand separators.
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s %s", sign, CurrencySymbol, formatThousand(amount))
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
