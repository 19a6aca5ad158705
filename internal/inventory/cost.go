// Package inventory values warehouse and shop stock at moving-average cost
// and books cost of goods sold for each sale.
package inventory

import "github.com/shopspring/decimal"

// MovingAverage blends a batch into existing stock:
// (qty*cost + batchQty*batchCost) / (qty + batchQty), or zero when the
// combined quantity is not positive.
func MovingAverage(qty, cost, batchQty, batchCost decimal.Decimal) decimal.Decimal {
	sum := qty.Add(batchQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := qty.Mul(cost).Add(batchQty.Mul(batchCost))
	return num.Div(sum)
}
