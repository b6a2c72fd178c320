package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func TestWaterFill_Proportional(t *testing.T) {
	shares, overflow := waterFill(decimal.NewFromInt(1000), []bucket{
		{weight: decimal.NewFromInt(1)},
		{weight: decimal.NewFromInt(1)},
		{weight: decimal.NewFromInt(1)},
	})

	assert.True(t, overflow.IsZero())
	assert.Equal(t, "333.34", shares[0].StringFixed(2))
	assert.Equal(t, "333.33", shares[1].StringFixed(2))
	assert.Equal(t, "333.33", shares[2].StringFixed(2))
	assert.True(t, sum(shares).Equal(decimal.NewFromInt(1000)))
}

func TestWaterFill_ClampsAndRedistributes(t *testing.T) {
	shares, overflow := waterFill(decimal.NewFromInt(700000), []bucket{
		{weight: decimal.NewFromInt(8000), limit: decimal.NewFromInt(560000), bounded: true},
		{weight: decimal.NewFromInt(1500), limit: decimal.NewFromInt(240000), bounded: true},
	})

	assert.True(t, overflow.IsZero())
	assert.True(t, shares[0].Equal(decimal.NewFromInt(560000)))
	assert.True(t, shares[1].Equal(decimal.NewFromInt(140000)))
}

func TestWaterFill_Overflow(t *testing.T) {
	shares, overflow := waterFill(decimal.NewFromInt(1000), []bucket{
		{weight: decimal.NewFromInt(3), limit: decimal.NewFromInt(300), bounded: true},
		{weight: decimal.NewFromInt(1), limit: decimal.NewFromInt(200), bounded: true},
	})

	assert.True(t, shares[0].Equal(decimal.NewFromInt(300)))
	assert.True(t, shares[1].Equal(decimal.NewFromInt(200)))
	assert.True(t, overflow.Equal(decimal.NewFromInt(500)))
}

func TestWaterFill_SkipsEmptyBuckets(t *testing.T) {
	shares, overflow := waterFill(decimal.RequireFromString("10.01"), []bucket{
		{weight: decimal.Zero},
		{weight: decimal.NewFromInt(2), limit: decimal.Zero, bounded: true},
		{weight: decimal.NewFromInt(5)},
	})

	assert.True(t, overflow.IsZero())
	assert.True(t, shares[0].IsZero())
	assert.True(t, shares[1].IsZero())
	assert.True(t, shares[2].Equal(decimal.RequireFromString("10.01")))
}

func TestWaterFill_ExactLimitsAreFilled(t *testing.T) {
	limits := []decimal.Decimal{
		decimal.RequireFromString("127929.99"),
		decimal.RequireFromString("85473.21"),
	}
	total := sum(limits)

	shares, overflow := waterFill(total, []bucket{
		{weight: limits[0], limit: limits[0], bounded: true},
		{weight: limits[1], limit: limits[1], bounded: true},
	})

	assert.True(t, overflow.IsZero())
	assert.True(t, shares[0].Equal(limits[0]))
	assert.True(t, shares[1].Equal(limits[1]))
}
