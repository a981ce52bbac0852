// Package format renders money, percentages and multiples for tables and reports.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NA is shown for undefined metrics such as a missing IRR.
const NA = "N/A"

// Round rounds half away from zero to the given decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Currency formats millions as "€1,234.5M".
func Currency(v float64) string {
	return "€" + grouped(v, 1) + "M"
}

// Percent formats a fraction as "15.0%".
func Percent(v float64) string {
	return grouped(decimal.NewFromFloat(v).Shift(2).InexactFloat64(), 1) + "%"
}

// Multiple formats a multiple as "2.50x".
func Multiple(v float64) string {
	return grouped(v, 2) + "x"
}

func PercentPtr(v *float64) string {
	if v == nil {
		return NA
	}
	return Percent(*v)
}

func MultiplePtr(v *float64) string {
	if v == nil {
		return NA
	}
	return Multiple(*v)
}

func CurrencyPtr(v *float64) string {
	if v == nil {
		return NA
	}
	return Currency(*v)
}

// grouped renders v with fixed places and comma thousands separators.
func grouped(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if sign == "-" && strings.Trim(b.String()+frac, "0.,") == "" {
		sign = ""
	}
	return sign + b.String() + frac
}
