package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"thousand", 1000, "Rs. 1,000"},
		{"fraction", 99.99, "Rs. 99.99"},
		{"invalid string", "invalid", "Rs. 0"},
		{"numeric string", "250", "Rs. 250"},
		{"lakh grouping", 100000, "Rs. 1,00,000"},
		{"decimal", decimal.RequireFromString("1234.5"), "Rs. 1,234.5"},
		{"nil", nil, "Rs. 0"},
		{"zero", 0, "Rs. 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.in))
		})
	}
}

func TestFormatCurrencyCompact(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"lakh", 100000, "Rs. 1.0L"},
		{"crore", 10000000, "Rs. 1.0Cr"},
		{"below thousand", 999, "Rs. 999"},
		{"thousands", 2500, "Rs. 2.5K"},
		{"lakhs", 250000, "Rs. 2.5L"},
		{"decimal crore", decimal.NewFromInt(35000000), "Rs. 3.5Cr"},
		{"invalid", "abc", "Rs. 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrencyCompact(tt.in))
		})
	}
}
