// Package item defines the normalized supplier line item.
package item

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceState tags how a line item's sale price was decided
type PriceState int

const (
	// PriceDerived means the sale price came from the margin rule
	PriceDerived PriceState = iota

	// PriceOverridden means an operator set the sale price by hand.
	// Bulk margin application must never touch an overridden price.
	PriceOverridden
)

// String returns the state name
func (s PriceState) String() string {
	switch s {
	case PriceDerived:
		return "derived"
	case PriceOverridden:
		return "overridden"
	}
	return "unknown"
}

// LineItem is one normalized supplier price-list row
type LineItem struct {
	// SupplierSKU is the supplier reference matched against the remote catalog
	SupplierSKU string `json:"supplier_sku"`

	// Article is the supplier's public article number, display only
	Article string `json:"article,omitempty"`

	// Manufacturer is display only
	Manufacturer string `json:"manufacturer,omitempty"`

	// ProductGroup is used for inclusion filtering before a run
	ProductGroup string `json:"product_group,omitempty"`

	// Available reports supplier stock availability, display only
	Available bool `json:"available"`

	// PurchasePrice is the supplier's price, >= 0
	PurchasePrice decimal.Decimal `json:"purchase_price"`

	// SalePrice is the price to push, derived or overridden
	SalePrice decimal.Decimal `json:"sale_price"`

	// PriceState records how SalePrice was decided
	PriceState PriceState `json:"price_state"`
}

// Overridden reports whether the sale price was set by hand
func (it *LineItem) Overridden() bool {
	return it.PriceState == PriceOverridden
}

// SetManualPrice sets the sale price by hand. The override is terminal until
// ClearOverride is called; bulk margin application passes the item through.
func (it *LineItem) SetManualPrice(price decimal.Decimal) {
	it.SalePrice = price
	it.PriceState = PriceOverridden
}

// ClearOverride returns the item to margin-derived pricing. The sale price
// keeps its last value until the next margin application.
func (it *LineItem) ClearOverride() {
	it.PriceState = PriceDerived
}

// Normalize drops duplicate supplier SKUs, keeping the last occurrence, and
// returns a warning per dropped duplicate. Input order is otherwise preserved.
func Normalize(items []LineItem) ([]LineItem, []string) {
	last := make(map[string]int, len(items))
	for i, it := range items {
		last[it.SupplierSKU] = i
	}

	var warnings []string
	out := make([]LineItem, 0, len(items))
	for i, it := range items {
		if last[it.SupplierSKU] != i {
			warnings = append(warnings, fmt.Sprintf("duplicate supplier SKU %q: keeping last occurrence", it.SupplierSKU))
			continue
		}
		out = append(out, it)
	}
	return out, warnings
}

// FilterGroups keeps items whose product group is in the inclusion set.
// A nil or empty set keeps everything.
func FilterGroups(items []LineItem, groups []string) []LineItem {
	if len(groups) == 0 {
		return items
	}
	include := make(map[string]bool, len(groups))
	for _, g := range groups {
		include[g] = true
	}
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if include[it.ProductGroup] {
			out = append(out, it)
		}
	}
	return out
}
