// Package currency implements the shared money formatting convention:
// two fraction digits, space-grouped thousands, and the "Kz" suffix.
package currency

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Suffix is appended to every formatted amount.
const Suffix = " Kz"

// ErrInvalidAmount is returned by Parse for anything that is not a plain
// non-negative decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// Format renders a decimal amount as e.g. "15 000,00 Kz". Negative values
// keep their sign in front of the grouped digits.
func Format(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart := fixed
	fracPart := "00"
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart = fixed[:i]
		fracPart = fixed[i+1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	b.WriteString(Suffix)
	return b.String()
}

// FormatPtr formats an optional amount; nil renders as the zero amount.
func FormatPtr(d *decimal.Decimal) string {
	if d == nil {
		return Format(decimal.Zero)
	}
	return Format(*d)
}

// FormatFloat formats a float amount; NaN and infinities render as the
// zero amount rather than leaking "NaN" into a receipt.
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Format(decimal.Zero)
	}
	return Format(decimal.NewFromFloat(f))
}

// Parse reads a non-negative decimal amount, accepting both comma and dot
// as the decimal separator and tolerating group spaces ("15 000,00").
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), strings.TrimSpace(Suffix)))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
