package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		total string
		want  string
	}{
		{"0", "0"},
		{"149.99", "0"},
		{"150", "50"},
		{"199.99", "50"},
		{"200", "75"},
		{"249.99", "75"},
		{"250", "100"},
		{"399.99", "100"},
		{"400", "150"},
		{"1000", "150"},
	}
	for _, tt := range tests {
		got := TierFor(dec(tt.total))
		assert.True(t, got.Equal(dec(tt.want)),
			"TierFor(%s) = %s, want %s", tt.total, got, tt.want)
	}
}

func TestAllocate_NoDiscount(t *testing.T) {
	lines := []decimal.Decimal{dec("100"), dec("49.99")}
	a := Allocate(lines)

	assert.False(t, a.Applied())
	assert.True(t, a.Discount.IsZero())
	require.Len(t, a.LineTotals, 2)
	assert.True(t, a.LineTotals[0].Equal(dec("100")))
	assert.True(t, a.LineTotals[1].Equal(dec("49.99")))
	assert.True(t, a.TotalAfter.Equal(dec("149.99")))
}

func TestAllocate_SingleLine(t *testing.T) {
	a := Allocate([]decimal.Decimal{dec("200")})

	assert.True(t, a.Applied())
	assert.True(t, a.Discount.Equal(dec("75")), "discount = %s", a.Discount)
	assert.True(t, a.LineTotals[0].Equal(dec("125")), "total = %s", a.LineTotals[0])
}

func TestAllocate_Proportional(t *testing.T) {
	a := Allocate([]decimal.Decimal{dec("300"), dec("100")})

	assert.True(t, a.TotalBefore.Equal(dec("400")))
	assert.True(t, a.Discount.Equal(dec("150")), "discount = %s", a.Discount)
	assert.True(t, a.LineTotals[0].Equal(dec("187.50")), "line 0 = %s", a.LineTotals[0])
	assert.True(t, a.LineTotals[1].Equal(dec("62.50")), "line 1 = %s", a.LineTotals[1])
	assert.True(t, a.TotalAfter.Equal(dec("250.00")), "after = %s", a.TotalAfter)
}

func TestAllocate_ReductionNeverExceedsTier(t *testing.T) {
	// Shares round individually; the running cap keeps the distributed
	// total at or under the tier amount.
	lines := []decimal.Decimal{dec("133.33"), dec("133.33"), dec("133.34")}
	a := Allocate(lines)

	require.True(t, a.Applied())
	tier := TierFor(a.TotalBefore)
	assert.True(t, a.Discount.LessThanOrEqual(tier),
		"distributed %s exceeds tier %s", a.Discount, tier)
	for i, total := range a.LineTotals {
		assert.False(t, total.IsNegative(), "line %d went negative: %s", i, total)
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	lines := []decimal.Decimal{dec("80"), dec("120"), dec("80")}
	first := Allocate(lines)
	second := Allocate(lines)

	for i := range first.LineTotals {
		assert.True(t, first.LineTotals[i].Equal(second.LineTotals[i]))
	}
	// Ties keep input order: both 80-lines must come out equal.
	assert.True(t, first.LineTotals[0].Equal(first.LineTotals[2]))
}

func TestAllocate_Empty(t *testing.T) {
	a := Allocate(nil)
	assert.False(t, a.Applied())
	assert.True(t, a.TotalBefore.IsZero())
	assert.Empty(t, a.LineTotals)
}
