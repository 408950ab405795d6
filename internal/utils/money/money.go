package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the allowance used when comparing two monetary values for
// equality, absorbing benign rounding differences between systems.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// DisplayPrecision is the canonical precision for persisted monetary fields.
const DisplayPrecision = 2

// Parse converts a string into a decimal, accepting both '.' and ',' as the
// decimal separator. Strings like "1.234,56" (thousands '.' with decimal ',')
// and "1,234.56" are both understood. The second return value reports whether
// the input was parsable.
func Parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// The rightmost of the two is the decimal separator, the other a
		// thousands separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseOr parses s and falls back to the supplied default when the input is
// empty or unparsable. Financial display paths prefer a safe default over an
// error; callers on outbound paths must log when the fallback is taken.
func ParseOr(s string, fallback decimal.Decimal) decimal.Decimal {
	d, ok := Parse(s)
	if !ok {
		return fallback
	}
	return d
}

// FromFloat converts a float into a decimal, falling back to the supplied
// default for non-finite inputs (NaN, +/-Inf).
func FromFloat(f float64, fallback decimal.Decimal) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return decimal.NewFromFloat(f)
}

// Round2 rounds to 2 decimal places using round-half-up, the statutory
// rounding for persisted monetary fields.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPrecision)
}

// Sum adds the given values without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// WithinTolerance reports whether |a-b| <= tol.
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// Equal reports whether a and b agree within the default tolerance.
func Equal(a, b decimal.Decimal) bool {
	return WithinTolerance(a, b, DefaultTolerance)
}

// IsNonNegative reports whether d >= 0.
func IsNonNegative(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// IsPositive reports whether d > 0.
func IsPositive(d decimal.Decimal) bool {
	return d.IsPositive()
}

// FormatRSD renders an amount in the Serbian locale convention with '.' as the
// thousands separator and ',' as the decimal separator, e.g. "1.234,56 RSD".
func FormatRSD(d decimal.Decimal) string {
	return Format(d, "RSD")
}

// Format renders an amount with Serbian locale separators followed by the
// given currency code.
func Format(d decimal.Decimal, currencyCode string) string {
	fixed := Round2(d).StringFixed(DisplayPrecision)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	if currencyCode != "" {
		b.WriteByte(' ')
		b.WriteString(currencyCode)
	}
	return b.String()
}
