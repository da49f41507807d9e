package sqlgen

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricesync/core/item"
)

func testItems() []item.LineItem {
	return []item.LineItem{
		{SupplierSKU: "REF001", SalePrice: decimal.RequireFromString("14.38")},
		{SupplierSKU: "REF002", SalePrice: decimal.Zero}, // excluded
		{SupplierSKU: "O'Brien", SalePrice: decimal.RequireFromString("5.00")},
	}
}

// TestGenerate checks the script joins through the supplier reference table
// and only includes items with a positive sale price.
func TestGenerate(t *testing.T) {
	script, err := Generate(testItems(), Options{
		SupplierID:    "5",
		MarginPercent: decimal.RequireFromString("15"),
	})
	require.NoError(t, err)

	assert.Contains(t, script, "-- Margin applied: 15%")
	assert.Contains(t, script, "SET p.price = 14.38")
	assert.Contains(t, script, "WHERE ps.product_supplier_reference = 'REF001' AND ps.id_supplier = 5;")
	assert.NotContains(t, script, "REF002", "zero-price items must be excluded")
	assert.Contains(t, script, "'O''Brien'", "quotes must be escaped")
	assert.Contains(t, script, "UPDATE ps_product_shop psh", "per-shop sync must be appended")
	assert.Equal(t, 3, strings.Count(script, "UPDATE "), "two item updates plus the shop sync")
}

// TestGenerateTablePrefix checks a custom prefix replaces ps_
func TestGenerateTablePrefix(t *testing.T) {
	script, err := Generate(testItems(), Options{SupplierID: "5", TablePrefix: "shop_"})
	require.NoError(t, err)
	assert.Contains(t, script, "UPDATE shop_product p")
	assert.NotContains(t, script, "ps_product")
}

// TestGenerateRequiresSupplier checks the supplier guard
func TestGenerateRequiresSupplier(t *testing.T) {
	_, err := Generate(testItems(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplier ID")
}

// TestGenerateNoEligibleItems checks the empty-result guard
func TestGenerateNoEligibleItems(t *testing.T) {
	_, err := Generate([]item.LineItem{{SupplierSKU: "X", SalePrice: decimal.Zero}}, Options{SupplierID: "5"})
	require.Error(t, err)
}
