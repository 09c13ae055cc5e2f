package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatConversionResult(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0, "0.00"},
		{"grouped with padding", 1234.5, "1,234.50"},
		{"millions", 1234567.891, "1,234,567.89"},
		{"below a thousand", 999.5, "999.50"},
		{"rounds up into next group", 999.999, "1,000.00"},
		{"negative", -1234.5, "-1,234.50"},
		{"exactly one cent", 0.01, "0.01"},
		{"first significant digit", 0.00003, "0.00003"},
		{"stops at first significant digit", 0.0012, "0.001"},
		{"rounds up to a cent", 0.005, "0.01"},
		{"negative small", -0.00003, "-0.00003"},
		{"beyond precision cap", 0.000000001, "0.00"},
		{"tie stored below half", 1.005, "1.00"},
		{"another tie stored below half", 2.675, "2.67"},
		{"tie stored below half again", 1.015, "1.01"},
		{"exact binary tie rounds up", 0.125, "0.13"},
		{"exact binary tie negative", -2.5, "-2.50"},
		{"large value", 123456789012.345, "123,456,789,012.35"},
		{"negative beyond precision cap", -0.000000001, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatConversionResult(tt.value))
		})
	}
}

func TestFormatConversionResultNeverCollapsesSmallValues(t *testing.T) {
	for _, v := range []float64{0.009, 0.0001, 0.00000123, 0.00000001} {
		assert.NotEqual(t, "0.00", FormatConversionResult(v), "value %v", v)
	}
}

func TestFormatUserInput(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1234567.8", "1,234,567.8"},
		{"1,234", "1,234"},
		{"12345", "12,345"},
		{"12.", "12."},
		{"0.000", "0.000"},
		{".5", ".5"},
		{"1.2.3", "1.23"},
		{"abc1x2y3", "123"},
		{"$ 1 000", "1,000"},
		{"", ""},
		{"12345678901234567890123", "12,345,678,901,234,567,890,123"},
		{"007", "007"},
		{"0001234", "0,001,234"},
		{"00.5", "00.5"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserInput(tt.raw))
		})
	}
}

func TestParseFormattedNumber(t *testing.T) {
	v, err := ParseFormattedNumber(FormatUserInput("1234567.8"))
	require.NoError(t, err)
	assert.Equal(t, 1234567.8, v)

	v, err = ParseFormattedNumber("-1,234.50")
	require.NoError(t, err)
	assert.Equal(t, -1234.5, v)

	_, err = ParseFormattedNumber("")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseFormattedNumber("abc")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseRoundTripsWithFormatters(t *testing.T) {
	for _, v := range []float64{0, 1234.5, 0.00003, 1000000, 42.42, -987654.32} {
		parsed, err := ParseFormattedNumber(FormatConversionResult(v))
		require.NoError(t, err)
		assert.InDelta(t, v, parsed, 1e-9, "value %v", v)
	}

	for _, raw := range []string{"1", "1234567.8", "0.5", "100000"} {
		parsed, err := ParseFormattedNumber(FormatUserInput(raw))
		require.NoError(t, err)
		expected, err := ParseFormattedNumber(raw)
		require.NoError(t, err)
		assert.Equal(t, expected, parsed)
	}
}
