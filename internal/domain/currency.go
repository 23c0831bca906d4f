package domain

import (
	"math"
	"strconv"
	"strings"
)

// MoneyColumns are the ledger columns displayed as BRL amounts when present.
var MoneyColumns = []string{"D0", "D+1", "Total"}

func IsMoneyColumn(name string) bool {
	for _, column := range MoneyColumns {
		if column == name {
			return true
		}
	}
	return false
}

// FormatBRL formats raw as "R$ 1.234,56". Values that do not parse as a finite
// number format as the empty string.
func FormatBRL(raw string) string {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return ""
	}
	return FormatBRLValue(value)
}

func FormatBRLValue(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}

	fixed := strconv.FormatFloat(math.Abs(value), 'f', 2, 64)
	whole, fraction, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if value < 0 && strings.Trim(whole+fraction, "0") != "" {
		sign = "-"
	}

	return "R$ " + sign + grouped.String() + "," + fraction
}
