// Package pricing applies the margin rule to supplier line items.
package pricing

import (
	"github.com/shopspring/decimal"

	"pricesync/core/item"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeSalePrice returns purchase * (1 + margin/100) rounded half-up to
// the given minor-unit precision. A zero or negative margin is a markdown.
func ComputeSalePrice(purchase, marginPercent decimal.Decimal, decimals int32) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(marginPercent.Div(oneHundred))
	// decimal.Round is half away from zero, which is half-up for the
	// non-negative prices this tool deals in.
	return purchase.Mul(factor).Round(decimals)
}

// ApplyMargin recomputes the sale price for every item still in the derived
// state. Overridden items pass through untouched. Idempotent for a stable
// margin and purchase price.
func ApplyMargin(items []item.LineItem, marginPercent decimal.Decimal, decimals int32) []item.LineItem {
	out := make([]item.LineItem, len(items))
	for i, it := range items {
		if !it.Overridden() {
			it.SalePrice = ComputeSalePrice(it.PurchasePrice, marginPercent, decimals)
		}
		out[i] = it
	}
	return out
}
