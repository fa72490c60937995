package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whole number", "99.00", "99"},
		{"with cents", "123.45", "123.45"},
		{"zero", "0.00", "0"},
		{"empty string", "", "0"},
		{"whitespace", "  12.5 ", "12.5"},
		{"invalid string", "abc", "0"},
		{"negative (unusual)", "-10.00", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
		})
	}
}

func TestPercentOff(t *testing.T) {
	tests := []struct {
		name string
		base string
		pct  string
		want string
	}{
		{"ten percent", "100.00", "10", "90"},
		{"rounds to cents", "19.99", "15", "16.99"},
		{"zero percent", "50", "0", "50"},
		{"over one hundred clamps", "50", "150", "0"},
		{"negative clamps", "50", "-5", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentOff(decimal.RequireFromString(tt.base), decimal.RequireFromString(tt.pct))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestAmountOff(t *testing.T) {
	assert.True(t, AmountOff(decimal.NewFromInt(100), decimal.NewFromInt(15)).Equal(decimal.NewFromInt(85)))
	assert.True(t, AmountOff(decimal.NewFromInt(10), decimal.NewFromInt(15)).IsZero())
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(9900), Cents(decimal.RequireFromString("99.00")))
	assert.Equal(t, int64(1), Cents(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(123456), Cents(decimal.RequireFromString("1234.56")))
}
