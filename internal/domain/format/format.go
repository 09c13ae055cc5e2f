// Package format renders amounts for the widget: live keystroke input and
// read-only conversion results, plus the inverse parse.
package format

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ErrInvalidNumber is returned when a display string does not hold a number
var ErrInvalidNumber = errors.New("invalid number")

const (
	minFractionDigits = 2
	maxSmallPrecision = 8
	zeroResult        = "0.00"
)

// FormatUserInput keeps digits and the first decimal point of raw, groups the
// integer part with thousands separators and leaves the typed fraction as is.
func FormatUserInput(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	parts := strings.Split(b.String(), ".")
	if len(parts) > 2 {
		parts = []string{parts[0], strings.Join(parts[1:], "")}
	}
	parts[0] = groupDigits(parts[0])

	return strings.Join(parts, ".")
}

// FormatConversionResult renders a converted amount. Zero is "0.00"; magnitudes
// below 0.01 get up to 8 decimals so the first significant digit shows; anything
// else is fixed to 2 decimals with a grouped integer part.
func FormatConversionResult(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return zeroResult
	}

	abs := exactDecimal(math.Abs(value))

	var formatted string
	if math.Abs(value) < 0.01 {
		formatted = formatSmall(abs)
	} else {
		rounded := abs.Round(minFractionDigits)
		fixed := rounded.StringFixed(minFractionDigits)
		formatted = humanize.BigComma(rounded.BigInt()) + fixed[strings.IndexByte(fixed, '.'):]
	}

	if value < 0 && formatted != zeroResult {
		return "-" + formatted
	}
	return formatted
}

func formatSmall(abs decimal.Decimal) string {
	precision := int32(minFractionDigits)
	for abs.Round(precision).IsZero() && precision < maxSmallPrecision {
		precision++
	}

	formatted := strings.TrimRight(abs.StringFixed(precision), "0")
	formatted = strings.TrimSuffix(formatted, ".")

	dot := strings.IndexByte(formatted, '.')
	if dot < 0 {
		return formatted + ".00"
	}
	if len(formatted)-dot-1 < minFractionDigits {
		formatted += "0"
	}
	return formatted
}

// ParseFormattedNumber strips thousands separators and parses the rest as a float
func ParseFormattedNumber(display string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(display), ",", "")
	if clean == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidNumber)
	}

	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, display)
	}

	return value, nil
}

// exactDecimal is the full binary expansion of a finite f, so rounding a
// tie like 1.005 (stored as 1.00499...) goes the way the stored value does.
func exactDecimal(f float64) decimal.Decimal {
	frac, exp := math.Frexp(f)
	mant := big.NewInt(int64(math.Ldexp(frac, 53)))
	exp -= 53

	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}

	// m * 2^-k == m * 5^k * 10^-k
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(exp))
}

// groupDigits inserts a comma before every third digit from the right.
// Typed leading zeros stay.
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
