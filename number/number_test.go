package number

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		exp   int32
	}{
		{"dot separator", "1234.56", "1234.56", -2},
		{"comma separator", "1234,56", "1234.56", -2},
		{"negative comma", "-0,50", "-0.5", -2},
		{"explicit plus", "+7", "7", 0},
		{"integer", "42", "42", 0},
		{"leading separator", ".25", "0.25", -2},
		{"trailing separator", "3.", "3", 0},
		{"surrounding space", "  10.000 ", "10", -3},
		{"many digits", "0.000000000123456789", "0.000000000123456789", -18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			assert.NoError(t, err)
			assert.NotZero(t, got)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.Equal(t, tt.exp, got.Exponent())
		})
	}
}

func TestParseBlank(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		got, err := Parse(input)
		assert.NoError(t, err)
		assert.True(t, got == nil)
	}
}

func TestParseRejects(t *testing.T) {
	inputs := []string{
		"1,234.56",
		"1.234,56",
		"1,234,567",
		"1.234.567",
		"12a",
		"-",
		"--1",
		"1 000",
		"0x10",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDecimal))

			var invalidErr *InvalidDecimalError
			assert.True(t, errors.As(err, &invalidErr))
			assert.Equal(t, input, invalidErr.Input)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{"1234.56", "1234,56", "-0,50", "0.10", "100", "-3.000", "7,"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := Parse(input)
			assert.NoError(t, err)

			second, err := Parse(Format(*first))
			assert.NoError(t, err)

			assert.True(t, first.Equal(*second))
			assert.Equal(t, first.Exponent(), second.Exponent())
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		assert.NotZero(t, recover())
	}()
	MustParse("1,2.3")
}
