package engine

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ============================================================================
// FORMATTING — KPI display strings
// ============================================================================
//   currency → whole units, grouped:          1234.5  → "$1,235"
//   percent  → value/100 as a percentage:     45.67   → "45.7%"
//   number   → abbreviated above a thousand:  1.5e6   → "1.5M", 2500 → "2.5K"
// Non-finite input always renders "0". Rounding is half away from zero.
// ============================================================================

// DefaultCurrencySymbol prefixes currency values.
const DefaultCurrencySymbol = "$"

// Formatter renders values for display.
type Formatter struct {
	CurrencySymbol string
}

// DefaultFormatter returns the formatter behind FormatValue.
func DefaultFormatter() Formatter {
	return Formatter{CurrencySymbol: DefaultCurrencySymbol}
}

// FormatValue renders v with the default formatter.
func FormatValue(v float64, format Format) string {
	return DefaultFormatter().Format(v, format)
}

// Format renders v in format. Unknown formats render as number.
func (f Formatter) Format(v float64, format Format) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}

	switch format {
	case FormatCurrency:
		s := grouped(decimal.NewFromFloat(v), 0)
		if strings.HasPrefix(s, "-") {
			return "-" + f.CurrencySymbol + s[1:]
		}
		return f.CurrencySymbol + s
	case FormatPercent:
		return grouped(decimal.NewFromFloat(v), 1) + "%"
	default:
		return abbreviate(v)
	}
}

func abbreviate(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return decimal.NewFromFloat(v/1_000_000).StringFixed(1) + "M"
	case abs >= 1_000:
		return decimal.NewFromFloat(v/1_000).StringFixed(1) + "K"
	default:
		return grouped(decimal.NewFromFloat(v), 0)
	}
}

// grouped rounds d to places and inserts thousands separators into the
// integer part.
func grouped(d decimal.Decimal, places int32) string {
	d = d.Round(places)
	neg := d.IsNegative()
	d = d.Abs()

	out := humanize.Comma(d.IntPart())
	if places > 0 {
		fixed := d.StringFixed(places)
		if dot := strings.IndexByte(fixed, '.'); dot >= 0 {
			out += fixed[dot:]
		}
	}
	if neg {
		return "-" + out
	}
	return out
}
