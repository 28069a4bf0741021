package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		page, size           int
		wantOffset, wantSize int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 0, 0, DefaultPageSize},
		{-2, 500, 0, DefaultPageSize},
	}
	for _, tt := range tests {
		off, lim := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, off)
		assert.Equal(t, tt.wantSize, lim)
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 5, ParseIntDefault("", 5))
	assert.Equal(t, 5, ParseIntDefault("x", 5))
	assert.Equal(t, 7, ParseIntDefault("7", 5))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 10, Clamp(0, 10, 50))
	assert.Equal(t, 50, Clamp(80, 10, 50))
	assert.Equal(t, 3, Clamp(3, 10, 50))
}
