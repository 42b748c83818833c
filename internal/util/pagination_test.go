package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		page, size  int
		offset, lim int
	}{
		{name: "first page", page: 1, size: 10, offset: 0, lim: 10},
		{name: "third page", page: 3, size: 10, offset: 20, lim: 10},
		{name: "zero page", page: 0, size: 5, offset: 0, lim: 5},
		{name: "default size", page: 2, size: 0, offset: DefaultPageSize, lim: DefaultPageSize},
		{name: "clamped size", page: 1, size: 1000, offset: 0, lim: MaxPageSize},
		{name: "huge page", page: math.MaxInt, size: 10, offset: (math.MaxInt - 10) / 10 * 10, lim: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.lim, limit)
		})
	}
}

func TestCalculate_HugePageStaysPositive(t *testing.T) {
	offset, limit := Calculate(math.MaxInt/5, 20)
	assert.Positive(t, offset)
	assert.GreaterOrEqual(t, math.MaxInt-offset, limit)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 3, ParseIntDefault("3", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
}

func TestMeta(t *testing.T) {
	m := Meta(2, 10, 10, 25)
	assert.Equal(t, int64(3), m["total_pages"])
	assert.Equal(t, true, m["has_prev"])
	assert.Equal(t, true, m["has_next"])

	m = Meta(3, 20, 10, 25)
	assert.Equal(t, false, m["has_next"])
}
