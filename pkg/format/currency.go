// Package format renders rupee amounts the way the storefront displays them.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	prefix = "Rs. "

	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatCurrency groups digits the Indian way (1,00,000) with at most two
// fraction digits. Values that are not numbers render as "Rs. 0".
func FormatCurrency(v any) string {
	f := toFloat(v)
	return prefix + printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// FormatCurrencyCompact abbreviates large amounts to Cr, L or K with one
// fraction digit.
func FormatCurrencyCompact(v any) string {
	f := toFloat(v)
	abs := math.Abs(f)
	switch {
	case abs >= crore:
		return fmt.Sprintf("%s%.1fCr", prefix, f/crore)
	case abs >= lakh:
		return fmt.Sprintf("%s%.1fL", prefix, f/lakh)
	case abs >= thousand:
		return fmt.Sprintf("%s%.1fK", prefix, f/thousand)
	default:
		return FormatCurrency(f)
	}
}

func toFloat(v any) float64 {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case decimal.Decimal:
		f = x.InexactFloat64()
	case *decimal.Decimal:
		if x != nil {
			f = x.InexactFloat64()
		}
	case json.Number:
		f, _ = x.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			f = parsed
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
