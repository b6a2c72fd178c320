package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/pkg/money"
)

// bucket is one recipient of a proportional split. An unbounded bucket takes
// any amount; a bounded one takes at most limit.
type bucket struct {
	weight  decimal.Decimal
	limit   decimal.Decimal
	bounded bool
}

// waterFill splits a whole-cent total across buckets in proportion to their
// weights. Buckets that would pass their limit are filled to it and the rest
// is re-split among the others. Shares are whole cents; leftover cents go one
// at a time to open buckets in input order. The returned overflow is whatever
// no bucket could absorb, so sum(shares) + overflow == total exactly.
func waterFill(total decimal.Decimal, buckets []bucket) ([]decimal.Decimal, decimal.Decimal) {
	shares := make([]decimal.Decimal, len(buckets))
	for i := range shares {
		shares[i] = decimal.Zero
	}

	active := make([]int, 0, len(buckets))
	for i, b := range buckets {
		if !b.weight.IsPositive() {
			continue
		}
		if b.bounded && !b.limit.IsPositive() {
			continue
		}
		active = append(active, i)
	}

	remaining := total
	for remaining.IsPositive() && len(active) > 0 {
		sumWeights := decimal.Zero
		for _, i := range active {
			sumWeights = sumWeights.Add(buckets[i].weight)
		}

		pool := remaining
		open := active[:0:0]
		clamped := false
		for _, i := range active {
			b := buckets[i]
			want := pool.Mul(b.weight).Div(sumWeights)
			if b.bounded && shares[i].Add(want).GreaterThanOrEqual(b.limit) {
				remaining = remaining.Sub(b.limit.Sub(shares[i]))
				shares[i] = b.limit
				clamped = true
				continue
			}
			open = append(open, i)
		}
		if clamped {
			active = open
			continue
		}

		handed := decimal.Zero
		for _, i := range active {
			s := money.FloorCents(remaining.Mul(buckets[i].weight).Div(sumWeights))
			shares[i] = shares[i].Add(s)
			handed = handed.Add(s)
		}
		remaining = remaining.Sub(handed)

		for remaining.GreaterThanOrEqual(money.Cent) {
			progressed := false
			for _, i := range active {
				if remaining.LessThan(money.Cent) {
					break
				}
				b := buckets[i]
				if b.bounded && b.limit.Sub(shares[i]).LessThan(money.Cent) {
					continue
				}
				shares[i] = shares[i].Add(money.Cent)
				remaining = remaining.Sub(money.Cent)
				progressed = true
			}
			if !progressed {
				break
			}
		}
		break
	}

	return shares, remaining
}
