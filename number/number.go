// Package number parses locale-neutral decimal literals.
//
// Either '.' or ',' may act as the decimal separator, but never both in the
// same literal, and grouping separators are rejected outright:
//
//	number.Parse("1234.56")  // 1234.56
//	number.Parse("1234,56")  // 1234.56
//	number.Parse("1,234.56") // InvalidDecimalError
package number

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidDecimal is matched by every error returned from Parse.
var ErrInvalidDecimal = errors.New("invalid decimal")

// InvalidDecimalError describes a literal that could not be parsed.
type InvalidDecimalError struct {
	Input  string
	Reason string
}

func (e *InvalidDecimalError) Error() string {
	return fmt.Sprintf("invalid decimal %q: %s", e.Input, e.Reason)
}

// Is reports whether target is ErrInvalidDecimal.
func (e *InvalidDecimalError) Is(target error) bool {
	return target == ErrInvalidDecimal
}

// Parse returns nil for blank input. All significant digits are kept, so
// "1.50" parses to a value with exponent -2.
func Parse(text string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, nil
	}

	hasDot := strings.IndexByte(s, '.') >= 0
	hasComma := strings.IndexByte(s, ',') >= 0
	if hasDot && hasComma {
		return nil, invalid(text, "mixed decimal separators")
	}

	sep := byte('.')
	if hasComma {
		sep = ','
	}
	if strings.Count(s, string(sep)) > 1 {
		return nil, invalid(text, "grouping separators are not supported")
	}

	body := s
	sign := ""
	if body[0] == '-' || body[0] == '+' {
		if body[0] == '-' {
			sign = "-"
		}
		body = body[1:]
	}

	intPart, fracPart, found := strings.Cut(body, string(sep))
	if intPart == "" && fracPart == "" {
		return nil, invalid(text, "no digits")
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return nil, invalid(text, "unexpected character")
	}

	if intPart == "" {
		intPart = "0"
	}
	normalized := sign + intPart
	if found && fracPart != "" {
		normalized += "." + fracPart
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, invalid(text, err.Error())
	}
	return &d, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constants.
func MustParse(text string) decimal.Decimal {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	if d == nil {
		panic(invalid(text, "blank input"))
	}
	return *d
}

// Format renders d with '.' as separator, keeping its scale so that
// Parse(Format(d)) yields an identical value and exponent.
func Format(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func invalid(input, reason string) error {
	return &InvalidDecimalError{Input: input, Reason: reason}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
