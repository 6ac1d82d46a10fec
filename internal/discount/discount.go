// Package discount computes the tiered checkout discount and distributes it
// across order lines proportionally to their totals.
package discount

import (
	"sort"

	"github.com/shopspring/decimal"
)

type tier struct {
	threshold decimal.Decimal
	amount    decimal.Decimal
}

// Tiers are checked highest threshold first.
var tiers = []tier{
	{decimal.NewFromInt(400), decimal.NewFromInt(150)},
	{decimal.NewFromInt(250), decimal.NewFromInt(100)},
	{decimal.NewFromInt(200), decimal.NewFromInt(75)},
	{decimal.NewFromInt(150), decimal.NewFromInt(50)},
}

// TierFor returns the flat discount for a pre-discount checkout total.
func TierFor(total decimal.Decimal) decimal.Decimal {
	for _, t := range tiers {
		if total.GreaterThanOrEqual(t.threshold) {
			return t.amount
		}
	}
	return decimal.Zero
}

// Allocation is the result of distributing a tier discount over a batch of
// line totals. LineTotals is indexed like the input.
type Allocation struct {
	TotalBefore decimal.Decimal
	Discount    decimal.Decimal
	TotalAfter  decimal.Decimal
	LineTotals  []decimal.Decimal
}

// Applied reports whether any discount was distributed.
func (a Allocation) Applied() bool { return a.Discount.IsPositive() }

// Allocate distributes the tier discount for the batch across its lines.
//
// Lines are visited largest total first (ties keep input order). Each line
// gives up its proportional share of the discount, rounded to 2 decimals and
// capped at whatever discount remains, so the summed reductions never exceed
// the tier amount and no line goes negative. Deterministic for a given input.
func Allocate(lines []decimal.Decimal) Allocation {
	alloc := Allocation{LineTotals: make([]decimal.Decimal, len(lines))}
	copy(alloc.LineTotals, lines)

	total := decimal.Zero
	for _, t := range lines {
		total = total.Add(t)
	}
	alloc.TotalBefore = total
	alloc.TotalAfter = total

	d := TierFor(total)
	if d.IsZero() || len(lines) == 0 {
		return alloc
	}

	if len(lines) == 1 {
		after := lines[0].Sub(d)
		if after.IsNegative() {
			after = decimal.Zero
		}
		alloc.LineTotals[0] = after
		alloc.TotalAfter = after
		alloc.Discount = total.Sub(after)
		return alloc
	}

	idx := make([]int, len(lines))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lines[idx[a]].GreaterThan(lines[idx[b]])
	})

	remaining := d
	for _, i := range idx {
		if !remaining.IsPositive() {
			break
		}
		share := d.Mul(lines[i]).Div(total).Round(2)
		if share.GreaterThan(remaining) {
			share = remaining
		}
		after := lines[i].Sub(share)
		if after.IsNegative() {
			after = decimal.Zero
		}
		alloc.LineTotals[i] = after
		remaining = remaining.Sub(share)
	}

	sum := decimal.Zero
	for _, t := range alloc.LineTotals {
		sum = sum.Add(t)
	}
	alloc.TotalAfter = sum
	alloc.Discount = alloc.TotalBefore.Sub(sum)
	return alloc
}
