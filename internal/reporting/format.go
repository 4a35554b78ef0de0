package reporting

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders v with two decimals and thousands separators,
// e.g. -39714.632 -> "-39,714.63".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatRatio(v)
	}

	s := decimal.NewFromFloat(v).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// FormatPct renders a percentage with two decimals.
func FormatPct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatRatio(v)
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// FormatRatio renders a ratio, spelling out the no-loss sentinel.
func FormatRatio(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	return decimal.NewFromFloat(v).StringFixed(4)
}
